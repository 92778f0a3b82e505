package returns

import (
	"context"
	"errors"
	"testing"
)

func TestCreateRejectsInvalidStatus(t *testing.T) {
	svc := NewService(nil, nil)

	for _, status := range []string{"shipped", "PENDING", "done", "refund", "pending|received"} {
		_, err := svc.Create(context.Background(), CreateRequest{OrderRef: "R-100", Status: status}, "")
		if !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("Create with status %q: error %v, want ErrInvalidStatus", status, err)
		}
	}
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	svc := NewService(nil, nil)

	for _, status := range []string{"", "archived", "Received"} {
		s := status
		_, err := svc.Update(context.Background(), "00000000-0000-0000-0000-000000000000", UpdateRequest{Status: &s})
		if !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("Update with status %q: error %v, want ErrInvalidStatus", status, err)
		}
	}
}
