package profiles

import (
	"context"
	"errors"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{"empty", Profile{ID: "u"}, false},
		{"full", Profile{ID: "u", Age: ptr(34), HeightCM: ptr(172.5), WeightKG: ptr(68.0)}, false},
		{"age zero", Profile{ID: "u", Age: ptr(0)}, false},
		{"age negative", Profile{ID: "u", Age: ptr(-1)}, true},
		{"age too high", Profile{ID: "u", Age: ptr(151)}, true},
		{"zero height", Profile{ID: "u", HeightCM: ptr(0.0)}, true},
		{"negative weight", Profile{ID: "u", WeightKG: ptr(-3.0)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.profile)
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestServiceUpsertTrimsAndPreservesCreatedAt(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	first, err := svc.Upsert(ctx, Profile{ID: "user-1", FullName: ptr("  Ada  "), Gender: ptr("   ")})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if first.FullName == nil || *first.FullName != "Ada" {
		t.Fatalf("expected trimmed name, got %v", first.FullName)
	}
	if first.Gender != nil {
		t.Fatalf("expected blank gender to be unset")
	}

	second, err := svc.Upsert(ctx, Profile{ID: "user-1", Age: ptr(40)})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("CreatedAt changed on update")
	}

	got, err := svc.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Age == nil || *got.Age != 40 || got.FullName != nil {
		t.Fatalf("expected full replacement on upsert, got %+v", got)
	}

	if _, err := svc.Get(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
