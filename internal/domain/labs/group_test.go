package labs

import "testing"

func entry(date, facility, itemName string) GroupEntry {
	return GroupEntry{
		Date:     date,
		Facility: facility,
		Item:     NormalizedLabItem{ItemName: itemName},
	}
}

func TestGroupBuckets(t *testing.T) {
	groups := Group([]GroupEntry{
		entry("2024/01/10", "Hosp A", "Cr"),
		entry("2024/01/10", "Hosp A", "BUN"),
		entry("2024/01/10", "Hosp B", "Cr"),
	})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	for _, g := range groups {
		switch g.Facility {
		case "Hosp A":
			if len(g.Items) != 2 || g.Items[0].ItemName != "Cr" || g.Items[1].ItemName != "BUN" {
				t.Errorf("Hosp A items = %+v, want first-seen order Cr, BUN", g.Items)
			}
		case "Hosp B":
			if len(g.Items) != 1 {
				t.Errorf("Hosp B items = %+v", g.Items)
			}
		default:
			t.Errorf("unexpected facility %q", g.Facility)
		}
	}
}

func TestGroupSortsDateDescending(t *testing.T) {
	groups := Group([]GroupEntry{
		entry("2024/01/10", "Hosp A", "Cr"),
		entry("2024/03/02", "Hosp A", "Cr"),
		entry("2023/12/28", "Hosp A", "Cr"),
	})
	want := []string{"2024/03/02", "2024/01/10", "2023/12/28"}
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	for i, g := range groups {
		if g.Date != want[i] {
			t.Errorf("groups[%d].Date = %q, want %q", i, g.Date, want[i])
		}
	}
}

func TestGroupMixedDateFormats(t *testing.T) {
	groups := Group([]GroupEntry{
		entry("2024-01-10", "Hosp A", "Cr"),
		entry("20240302", "Hosp A", "Cr"),
	})
	if len(groups) != 2 || groups[0].Date != "20240302" {
		t.Errorf("got %+v, want the March date first", groups)
	}
}

func TestGroupStableForTies(t *testing.T) {
	groups := Group([]GroupEntry{
		entry("2024/01/10", "Hosp A", "Cr"),
		entry("2024/01/10", "Hosp B", "Cr"),
		entry("2024/01/10", "Hosp C", "Cr"),
	})
	want := []string{"Hosp A", "Hosp B", "Hosp C"}
	for i, g := range groups {
		if g.Facility != want[i] {
			t.Errorf("groups[%d].Facility = %q, want %q (stable tie order)", i, g.Facility, want[i])
		}
	}
}

func TestGroupFirstSeenDiagnosisWins(t *testing.T) {
	a := entry("2024/01/10", "Hosp A", "Cr")
	a.DiagnosisCode = "N18.3"
	a.DiagnosisName = "CKD stage 3"
	b := entry("2024/01/10", "Hosp A", "BUN")
	b.DiagnosisCode = "E11.9"
	groups := Group([]GroupEntry{a, b})
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].DiagnosisCode != "N18.3" || groups[0].DiagnosisName != "CKD stage 3" {
		t.Errorf("diagnosis = %q/%q, want first-seen N18.3", groups[0].DiagnosisCode, groups[0].DiagnosisName)
	}
}

func TestGroupUnparseableDatesSortLexicographically(t *testing.T) {
	groups := Group([]GroupEntry{
		entry("note-b", "Hosp A", "Cr"),
		entry("note-c", "Hosp A", "Cr"),
		entry("note-a", "Hosp A", "Cr"),
	})
	want := []string{"note-c", "note-b", "note-a"}
	for i, g := range groups {
		if g.Date != want[i] {
			t.Errorf("groups[%d].Date = %q, want %q", i, g.Date, want[i])
		}
	}
}
