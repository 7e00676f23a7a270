package relations_test

import (
	"testing"

	"workable/domain/relations"
	pkgerrors "workable/pkg/errors"
)

func TestStore_Link(t *testing.T) {
	store := relations.NewStore()

	relation, err := store.Link("a", "b", "depends_on", "a needs b", map[string]interface{}{"weight": 2})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if relation.Kind != "depends_on" {
		t.Errorf("kind = %q, want depends_on", relation.Kind)
	}
	if !store.Has("a", "b") {
		t.Error("Has(a, b) = false after Link")
	}
	if store.Has("b", "a") {
		t.Error("relations are directed, Has(b, a) should be false")
	}

	// A blank kind falls back to the default
	relation, err = store.Link("a", "c", "", "", nil)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if relation.Kind != relations.KindRelated {
		t.Errorf("default kind = %q, want %q", relation.Kind, relations.KindRelated)
	}
}

func TestStore_Link_Validation(t *testing.T) {
	store := relations.NewStore()

	if _, err := store.Link("", "b", "", "", nil); err == nil {
		t.Error("empty source should fail")
	}
	if _, err := store.Link("a", "  ", "", "", nil); err == nil {
		t.Error("blank target should fail")
	}
	if store.Count() != 0 {
		t.Errorf("Count = %d after rejected links, want 0", store.Count())
	}
}

func TestStore_Link_Overwrites(t *testing.T) {
	store := relations.NewStore()

	store.Link("a", "b", "blocks", "", nil)
	relation, err := store.Link("a", "b", "depends_on", "replaced", nil)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}

	got, ok := store.Get("a", "b")
	if !ok {
		t.Fatal("Get(a, b) missing after overwrite")
	}
	if got.Kind != "depends_on" || got != relation {
		t.Errorf("overwrite kept the old relation: %+v", got)
	}
	if store.Count() != 1 {
		t.Errorf("Count = %d, want 1", store.Count())
	}
}

func TestStore_Link_CopiesMeta(t *testing.T) {
	store := relations.NewStore()
	meta := map[string]interface{}{"weight": 1}

	relation, _ := store.Link("a", "b", "", "", meta)
	meta["weight"] = 99

	if relation.Meta["weight"] != 1 {
		t.Errorf("stored meta follows the caller's map: %v", relation.Meta)
	}
}

func TestStore_Unlink(t *testing.T) {
	store := relations.NewStore()
	store.Link("a", "b", "", "", nil)

	if !store.Unlink("a", "b") {
		t.Error("Unlink(a, b) = false, want true")
	}
	if store.Unlink("a", "b") {
		t.Error("second Unlink(a, b) = true, want false")
	}
}

func TestStore_DirectionalLookups(t *testing.T) {
	store := relations.NewStore()
	store.Link("a", "b", "", "", nil)
	store.Link("a", "c", "", "", nil)
	store.Link("d", "a", "", "", nil)

	from := store.From("a")
	if len(from) != 2 || from[0].TargetID != "b" || from[1].TargetID != "c" {
		t.Errorf("From(a) = %v, want targets [b c]", from)
	}

	to := store.To("a")
	if len(to) != 1 || to[0].SourceID != "d" {
		t.Errorf("To(a) = %v, want sources [d]", to)
	}

	related := store.Related("a")
	want := []string{"b", "c", "d"}
	if len(related) != len(want) {
		t.Fatalf("Related(a) = %v, want %v", related, want)
	}
	for i := range want {
		if related[i] != want[i] {
			t.Errorf("Related(a) = %v, want %v", related, want)
			break
		}
	}
}

func TestStore_UpdateMeta(t *testing.T) {
	store := relations.NewStore()
	store.Link("a", "b", "", "", nil)

	if err := store.UpdateMeta("a", "b", "weight", 3); err != nil {
		t.Fatalf("UpdateMeta: %v", err)
	}

	relation, _ := store.Get("a", "b")
	if relation.Meta["weight"] != 3 {
		t.Errorf("meta after update = %v", relation.Meta)
	}

	err := store.UpdateMeta("a", "nowhere", "weight", 3)
	if err == nil {
		t.Fatal("UpdateMeta on a missing relation should fail")
	}
	if !pkgerrors.IsType(err, pkgerrors.ErrorTypeRelation) {
		t.Errorf("expected a relation error, got %v", err)
	}
}

func TestStore_FindByMeta(t *testing.T) {
	store := relations.NewStore()
	store.Link("a", "b", "", "", map[string]interface{}{"phase": "build"})
	store.Link("a", "c", "", "", map[string]interface{}{"phase": "test"})
	store.Link("d", "e", "", "", map[string]interface{}{"phase": "build"})

	found := store.FindByMeta("phase", "build")
	if len(found) != 2 {
		t.Fatalf("FindByMeta = %v, want 2 relations", found)
	}
	// Sorted by pair key: "a->b" before "d->e"
	if found[0].SourceID != "a" || found[1].SourceID != "d" {
		t.Errorf("FindByMeta order = %v", found)
	}

	if got := store.FindByMeta("phase", "deploy"); len(got) != 0 {
		t.Errorf("FindByMeta miss = %v, want empty", got)
	}
}

func TestStore_Clear(t *testing.T) {
	store := relations.NewStore()
	store.Link("a", "b", "", "", nil)
	store.Link("c", "a", "", "", nil)
	store.Link("c", "d", "", "", nil)

	if cleared := store.Clear("a"); cleared != 2 {
		t.Errorf("Clear(a) = %d, want 2", cleared)
	}
	if store.Count() != 1 {
		t.Errorf("Count after clear = %d, want 1", store.Count())
	}
	if !store.Has("c", "d") {
		t.Error("unrelated link removed by Clear")
	}
}
