package domain_test

import (
	"testing"

	"place_discovery/internal/domain"
)

func TestClassifyPlace_TagTable(t *testing.T) {
	cases := []struct {
		tags []string
		want domain.Bucket
	}{
		{[]string{"restaurant"}, domain.BucketEatAndDrink},
		{[]string{"Cafe"}, domain.BucketEatAndDrink}, // case-insensitive
		{[]string{"unknown", "museum"}, domain.BucketSights},
		{[]string{"bar"}, domain.BucketNightlife},
		{[]string{"park"}, domain.BucketOutdoors},
		{[]string{"cinema"}, domain.BucketEntertainment},
		{[]string{"spa"}, domain.BucketWellness},
		{[]string{"mall"}, domain.BucketShopping},
	}
	for _, c := range cases {
		b, ok := domain.ClassifyPlace(domain.Place{ID: "p1", Categories: c.tags})
		if !ok {
			t.Fatalf("tags %v: expected a bucket", c.tags)
		}
		if b != c.want {
			t.Fatalf("tags %v: want %s, got %s", c.tags, c.want, b)
		}
	}
}

func TestClassifyPlace_FirstMatchWins(t *testing.T) {
	p := domain.Place{ID: "p", Categories: []string{"restaurant", "bar"}}
	b, ok := domain.ClassifyPlace(p)
	if !ok || b != domain.BucketEatAndDrink {
		t.Fatalf("want eatAndDrink, got %s (ok=%v)", b, ok)
	}
}

func TestClassifyPlace_Unmapped(t *testing.T) {
	p := domain.Place{ID: "p", Categories: []string{"nonsense", "gibberish"}}
	if _, ok := domain.ClassifyPlace(p); ok {
		t.Fatal("unmapped tags should not classify")
	}
	if _, ok := domain.ClassifyPlace(domain.Place{ID: "q"}); ok {
		t.Fatal("no tags should not classify")
	}
}

func TestClassifyPlace_SyntheticPrefixes(t *testing.T) {
	// id prefix beats any tags on the record
	ev := domain.Place{ID: "event:123", Categories: []string{"restaurant"}}
	if b, ok := domain.ClassifyPlace(ev); !ok || b != domain.BucketEvents {
		t.Fatalf("event prefix: want events, got %s (ok=%v)", b, ok)
	}
	tour := domain.Place{ID: "tour:abc"}
	if b, ok := domain.ClassifyPlace(tour); !ok || b != domain.BucketTours {
		t.Fatalf("tour prefix: want tours, got %s (ok=%v)", b, ok)
	}
}

func TestDefaultFilterSet(t *testing.T) {
	f := domain.DefaultFilterSet()
	for _, b := range domain.AllBuckets {
		if !f.Enabled(b) {
			t.Fatalf("bucket %s should be enabled by default", b)
		}
	}
	if f.TopRated {
		t.Fatal("top rated should default off")
	}
}
