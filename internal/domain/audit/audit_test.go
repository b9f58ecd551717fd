package audit

import "testing"

func TestBuildBaseQueryNumbersPlaceholders(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", "t1", Filter{Action: ActionEvaluationSubmit, EntityID: "ev-1"})
	want := "SELECT COUNT(1) FROM audit_events WHERE tenant_id = $1 AND action = $2 AND entity_id = $3"
	if query != want {
		t.Fatalf("unexpected query:\n%s\nwant:\n%s", query, want)
	}
	if len(args) != 3 || args[1] != ActionEvaluationSubmit || args[2] != "ev-1" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildBaseQueryWithoutFilters(t *testing.T) {
	query, args := buildBaseQuery("SELECT id", "t1", Filter{})
	if query != "SELECT id FROM audit_events WHERE tenant_id = $1" || len(args) != 1 {
		t.Fatalf("unexpected query %q %v", query, args)
	}
}

func TestMarshalOptional(t *testing.T) {
	if b, err := marshalOptional(nil); err != nil || b != nil {
		t.Fatalf("expected nil payload, got %s %v", b, err)
	}
	b, err := marshalOptional(map[string]string{"status": "open"})
	if err != nil || string(b) != `{"status":"open"}` {
		t.Fatalf("unexpected payload %s %v", b, err)
	}
}
