package rooms

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func TestGetOrCreate_ReturnsSameRoom(t *testing.T) {
	reg := NewRegistry()

	rm1 := reg.GetOrCreate("r1")
	rm2 := reg.GetOrCreate("r1")
	if rm1 != rm2 {
		t.Error("GetOrCreate() should return the same room for the same key")
	}

	other := reg.GetOrCreate("r2")
	if other == rm1 {
		t.Error("GetOrCreate() should return distinct rooms for distinct keys")
	}
}

func TestGetOrCreate_Concurrent(t *testing.T) {
	reg := NewRegistry()
	numCallers := 100

	results := make(chan *Room, numCallers)
	var wg sync.WaitGroup
	for i := 0; i < numCallers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- reg.GetOrCreate("shared")
		}()
	}
	wg.Wait()
	close(results)

	first := <-results
	for rm := range results {
		if rm != first {
			t.Fatal("Concurrent GetOrCreate() produced more than one room for the same key")
		}
	}
}

func TestGet(t *testing.T) {
	reg := NewRegistry()

	if reg.Get("missing") != nil {
		t.Error("Get() should return nil for an unknown key")
	}

	rm := reg.GetOrCreate("r1")
	if reg.Get("r1") != rm {
		t.Error("Get() should return the registered room")
	}
}

func TestRemove_OnlyWhenEmpty(t *testing.T) {
	reg := NewRegistry()
	rm := reg.GetOrCreate("r1")
	rm.Join("conn-a", "Alice")

	reg.Remove("r1")
	if reg.Get("r1") != rm {
		t.Error("Remove() must not delete a room with members")
	}

	rm.Leave("conn-a")
	reg.Remove("r1")
	if reg.Get("r1") != nil {
		t.Error("Remove() should delete an empty room")
	}
}

func TestRemove_UnknownKeyIsNoop(t *testing.T) {
	reg := NewRegistry()
	reg.Remove("never-existed")
	reg.Remove("never-existed")
}

func TestRemove_FreshRoomAfterReclaim(t *testing.T) {
	reg := NewRegistry()
	rm := reg.GetOrCreate("r1")
	rm.Join("conn-a", "Alice")
	rm.SetCode("conn-a", "some state")
	rm.SetLanguage("conn-a", "python")
	rm.Leave("conn-a")
	reg.Remove("r1")

	// A later join to the same key sees a brand new room with defaults.
	fresh := reg.GetOrCreate("r1")
	if fresh == rm {
		t.Fatal("Reclaimed key should yield a fresh room")
	}
	code, language, roster := fresh.Snapshot()
	if code != "" {
		t.Errorf("Fresh room should have empty code: got %q", code)
	}
	if language != DefaultLanguage {
		t.Errorf("Fresh room language mismatch: got %q", language)
	}
	if len(roster) != 0 {
		t.Errorf("Fresh room roster should be empty: got %v", roster)
	}
}

func TestRemove_ClosedRoomRejectsLateJoin(t *testing.T) {
	reg := NewRegistry()
	stale := reg.GetOrCreate("r1")
	reg.Remove("r1")

	// A caller still holding the removed room cannot join it; retrying the
	// registry yields a live replacement.
	if _, ok := stale.Join("conn-a", "Alice"); ok {
		t.Fatal("Join() on a removed room should fail")
	}
	fresh := reg.GetOrCreate("r1")
	if _, ok := fresh.Join("conn-a", "Alice"); !ok {
		t.Fatal("Join() on the replacement room should succeed")
	}
}

func TestList(t *testing.T) {
	reg := NewRegistry()
	busy := reg.GetOrCreate("busy")
	busy.Join("conn-a", "Alice")
	busy.Join("conn-b", "Bob")
	quiet := reg.GetOrCreate("quiet")
	quiet.Join("conn-c", "Carol")

	infos := reg.List()
	if len(infos) != 2 {
		t.Fatalf("Expected 2 rooms, got %d", len(infos))
	}
	if infos[0].ID != "busy" || infos[0].Users != 2 {
		t.Errorf("Busiest room should sort first: got %+v", infos[0])
	}
	if infos[1].ID != "quiet" || infos[1].Users != 1 {
		t.Errorf("Second room mismatch: got %+v", infos[1])
	}
	if infos[0].Language != DefaultLanguage {
		t.Errorf("Listing language mismatch: got %q", infos[0].Language)
	}
}

func TestRoomLifecycle_TwoParticipants(t *testing.T) {
	reg := NewRegistry()

	rm := reg.GetOrCreate("R1")
	roster, _ := rm.Join("conn-a", "Alice")
	if !reflect.DeepEqual(roster, []string{"Alice"}) {
		t.Errorf("Roster after Alice joins: got %v", roster)
	}

	roster, _ = rm.Join("conn-b", "Bob")
	if !reflect.DeepEqual(roster, []string{"Alice", "Bob"}) {
		t.Errorf("Roster after Bob joins: got %v", roster)
	}

	rm.SetCode("conn-b", "print(1)")
	code, _, _ := rm.Snapshot()
	if code != "print(1)" {
		t.Errorf("Code after Bob's edit: got %q", code)
	}

	roster, _, empty := rm.Leave("conn-a")
	if empty {
		t.Error("Room should survive while Bob remains")
	}
	if !reflect.DeepEqual(roster, []string{"Bob"}) {
		t.Errorf("Roster after Alice leaves: got %v", roster)
	}
	if reg.Get("R1") == nil {
		t.Error("Room should still be registered")
	}

	_, _, empty = rm.Leave("conn-b")
	if !empty {
		t.Fatal("Room should be empty after Bob leaves")
	}
	reg.Remove("R1")
	if reg.Get("R1") != nil {
		t.Error("Empty room should be gone from the registry")
	}
}

func TestRegistry_ConcurrentChurn(t *testing.T) {
	reg := NewRegistry()
	numClients := 100

	var wg sync.WaitGroup
	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			key := fmt.Sprintf("room-%d", index%10)
			connID := fmt.Sprintf("conn-%d", index)
			for {
				rm := reg.GetOrCreate(key)
				if _, ok := rm.Join(connID, "user"); ok {
					_, _, empty := rm.Leave(connID)
					if empty {
						reg.Remove(key)
					}
					return
				}
			}
		}(i)
	}
	wg.Wait()

	// Every room ended empty, so every room must be gone.
	if infos := reg.List(); len(infos) != 0 {
		t.Errorf("Expected no rooms after churn, got %d: %v", len(infos), infos)
	}
}
