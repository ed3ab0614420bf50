package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUserIDUnmarshalAcceptsNumberAndString(t *testing.T) {
	var a, b struct {
		AssignedTo UserID `json:"assignedTo"`
	}
	if err := json.Unmarshal([]byte(`{"assignedTo": 3}`), &a); err != nil {
		t.Fatalf("number: %v", err)
	}
	if err := json.Unmarshal([]byte(`{"assignedTo": "3"}`), &b); err != nil {
		t.Fatalf("string: %v", err)
	}
	if a.AssignedTo != 3 || a.AssignedTo != b.AssignedTo {
		t.Fatalf("ids differ: %v vs %v", a.AssignedTo, b.AssignedTo)
	}

	out, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"assignedTo":3}` {
		t.Fatalf("expected numeric id, got %s", out)
	}
}

func TestUserIDUnmarshalRejectsNonPositive(t *testing.T) {
	for _, raw := range []string{`0`, `-4`, `"0"`, `"-4"`, `1.5`} {
		var id UserID
		if err := json.Unmarshal([]byte(raw), &id); err == nil {
			t.Fatalf("expected error for %s, got %v", raw, id)
		}
	}
	var id UserID = 7
	if err := json.Unmarshal([]byte(`null`), &id); err != nil || id != 0 {
		t.Fatalf("null: %v %v", id, err)
	}
}

func TestUnsavedUserOmitsID(t *testing.T) {
	out, err := json.Marshal(User{Name: "Ann", Email: "ann@example.com", Password: "secret1", Role: RoleEmployee})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back User
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unsaved user does not decode: %s: %v", out, err)
	}
}

func TestParseUserID(t *testing.T) {
	if id, err := ParseUserID(" 12 "); err != nil || id != 12 {
		t.Fatalf("ParseUserID: %v %v", id, err)
	}
	for _, raw := range []string{"", "abc", "0", "-4", "1.5"} {
		if _, err := ParseUserID(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole("Admin"); err != nil || r != RoleAdmin {
		t.Fatalf("ParseRole(Admin): %v %v", r, err)
	}
	if _, err := ParseRole("manager"); err == nil {
		t.Fatalf("expected unknown role to be rejected")
	}
}

func TestWithStatusAppendsExactlyOneEntry(t *testing.T) {
	created := DateOf(time.Date(2026, 3, 1, 15, 4, 0, 0, time.UTC))
	today := DateOf(time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC))

	task := NewTask(1, "Fix bug", "crash on save", StatusToDo, 3, created)
	if len(task.History) != 1 || task.History[0].Status != StatusToDo {
		t.Fatalf("unexpected initial history: %+v", task.History)
	}

	moved := task.WithStatus(StatusInProgress, today)
	if len(moved.History) != len(task.History)+1 {
		t.Fatalf("history grew by %d", len(moved.History)-len(task.History))
	}
	last := moved.History[len(moved.History)-1]
	if last.Status != StatusInProgress || last.Date != today {
		t.Fatalf("unexpected new entry: %+v", last)
	}
	if moved.Status != StatusInProgress {
		t.Fatalf("status not updated: %s", moved.Status)
	}
	if task.Status != StatusToDo || len(task.History) != 1 {
		t.Fatalf("receiver mutated: %+v", task)
	}
}

func TestWithStatusDoesNotAliasHistory(t *testing.T) {
	on := DateOf(time.Now())
	base := NewTask(1, "t", "d", StatusToDo, 1, on)
	base.History = append(make([]HistoryEntry, 0, 8), base.History...)

	a := base.WithStatus(StatusInProgress, on)
	b := base.WithStatus(StatusDone, on)
	if a.History[1].Status != StatusInProgress || b.History[1].Status != StatusDone {
		t.Fatalf("histories share storage: %+v / %+v", a.History, b.History)
	}
}

func TestDateJSON(t *testing.T) {
	var entry HistoryEntry
	if err := json.Unmarshal([]byte(`{"status":"Done","date":"2026-10-14"}`), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry.Date.String() != "2026-10-14" {
		t.Fatalf("date = %s", entry.Date)
	}
	out, _ := json.Marshal(entry)
	if string(out) != `{"status":"Done","date":"2026-10-14"}` {
		t.Fatalf("marshal = %s", out)
	}
	if err := json.Unmarshal([]byte(`{"date":"14/10/2026"}`), &entry); err == nil {
		t.Fatalf("expected invalid date error")
	}
}

func TestStatusValid(t *testing.T) {
	if !StatusInProgress.Valid() || Status("Blocked").Valid() {
		t.Fatalf("unexpected validity")
	}
}
