package pkg

import "testing"

func makeItems(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestPaginatePageCounts(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		size     int
		numPages int
		lastSize int
	}{
		{"even split", 20, 10, 2, 10},
		{"remainder", 13, 10, 2, 3},
		{"single partial page", 7, 10, 1, 7},
		{"exact one page", 10, 10, 1, 10},
		{"empty listing", 0, 10, 1, 0},
		{"size three", 10, 3, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := makeItems(tt.n)

			first := Paginate(items, tt.size, 1)
			if first.NumPages != tt.numPages {
				t.Errorf("NumPages = %d, want %d", first.NumPages, tt.numPages)
			}
			if first.Count != tt.n {
				t.Errorf("Count = %d, want %d", first.Count, tt.n)
			}

			// every page but the last is full, the last holds the rest
			for p := 1; p <= tt.numPages; p++ {
				page := Paginate(items, tt.size, p)
				want := tt.size
				if p == tt.numPages {
					want = tt.lastSize
				}
				if len(page.Items) != want {
					t.Errorf("page %d: len = %d, want %d", p, len(page.Items), want)
				}
			}
		})
	}
}

func TestPaginateContiguous(t *testing.T) {
	items := makeItems(25)
	var got []int
	for p := 1; p <= 3; p++ {
		got = append(got, Paginate(items, 10, p).Items...)
	}
	if len(got) != 25 {
		t.Fatalf("reassembled %d items, want 25", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("item %d = %d, order not preserved", i, v)
		}
	}
}

func TestPaginateClamping(t *testing.T) {
	items := makeItems(13)

	tests := []struct {
		name       string
		page       int
		wantNumber int
		wantLen    int
	}{
		{"below range", -5, 1, 10},
		{"zero", 0, 1, 10},
		{"past the end clamps to last", 99, 2, 3},
		{"last page", 2, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Paginate(items, 10, tt.page)
			if page.Number != tt.wantNumber {
				t.Errorf("Number = %d, want %d", page.Number, tt.wantNumber)
			}
			if len(page.Items) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(page.Items), tt.wantLen)
			}
		})
	}
}

func TestPaginateDefaultSize(t *testing.T) {
	page := Paginate(makeItems(15), 0, 1)
	if len(page.Items) != DefaultPageSize {
		t.Errorf("len = %d, want default %d", len(page.Items), DefaultPageSize)
	}
}

func TestPageNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"-3", 1},
		{"1", 1},
		{"2", 2},
		{"17", 17},
	}
	for _, tt := range tests {
		t.Run("raw="+tt.raw, func(t *testing.T) {
			if got := PageNumber(tt.raw); got != tt.want {
				t.Errorf("PageNumber(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPageNavigation(t *testing.T) {
	items := makeItems(25)

	first := Paginate(items, 10, 1)
	if first.HasPrev() || !first.HasNext() {
		t.Errorf("first page: HasPrev=%v HasNext=%v", first.HasPrev(), first.HasNext())
	}
	if first.NextNumber() != 2 {
		t.Errorf("NextNumber = %d, want 2", first.NextNumber())
	}

	last := Paginate(items, 10, 3)
	if !last.HasPrev() || last.HasNext() {
		t.Errorf("last page: HasPrev=%v HasNext=%v", last.HasPrev(), last.HasNext())
	}
	if last.PrevNumber() != 2 {
		t.Errorf("PrevNumber = %d, want 2", last.PrevNumber())
	}
}
