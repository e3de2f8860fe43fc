package mongodb

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/johsire/dev-connector/core/domain"
	"github.com/johsire/dev-connector/core/port/out"
)

func TestDocumentMappingNormalizesNilSlices(t *testing.T) {
	p := &domain.Profile{
		ID:     uuid.NewString(),
		UserID: uuid.New(),
		Handle: "johndoe",
	}

	doc := toDocument(p)
	if doc.Skills == nil || doc.Experience == nil || doc.Education == nil {
		t.Fatalf("toDocument left nil slices: %+v", doc)
	}

	back, err := doc.toEntity()
	if err != nil {
		t.Fatalf("toEntity: %v", err)
	}
	if back.UserID != p.UserID {
		t.Errorf("user id = %s, want %s", back.UserID, p.UserID)
	}
	if back.Skills == nil || back.Experience == nil || back.Education == nil {
		t.Errorf("toEntity left nil slices: %+v", back)
	}
}

func TestToEntityRejectsBadUserID(t *testing.T) {
	doc := &profileDocument{ID: uuid.NewString(), UserID: "not-a-uuid", Handle: "johndoe"}
	if _, err := doc.toEntity(); err == nil {
		t.Fatal("expected error for malformed user id")
	}
}

func TestDuplicateErrorMapsIndexToSentinel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "handle index",
			err:  errors.New(`E11000 duplicate key error collection: devconnector.profiles index: uniq_handle dup key: { handle: "johndoe" }`),
			want: out.ErrDuplicateHandle,
		},
		{
			name: "user index",
			err:  errors.New(`E11000 duplicate key error collection: devconnector.profiles index: uniq_user_id dup key: { user_id: "..." }`),
			want: out.ErrDuplicateUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := duplicateError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("duplicateError() = %v, want %v", got, tt.want)
			}
		})
	}
}
