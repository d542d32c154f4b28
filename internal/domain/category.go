package domain

import "strings"

// Bucket is a coarse filter category. The set is fixed; raw provider tags
// map many-to-one into it via bucketByTag.
type Bucket string

const (
	BucketEatAndDrink   Bucket = "eatAndDrink"
	BucketShopping      Bucket = "shopping"
	BucketSights        Bucket = "sights"
	BucketNightlife     Bucket = "nightlife"
	BucketOutdoors      Bucket = "outdoors"
	BucketEntertainment Bucket = "entertainment"
	BucketWellness      Bucket = "wellness"
	BucketEvents        Bucket = "events" // synthetic, id prefix "event:"
	BucketTours         Bucket = "tours"  // synthetic, id prefix "tour:"
)

// Synthetic id prefixes that bypass the tag table entirely.
const (
	eventIDPrefix = "event:"
	tourIDPrefix  = "tour:"
)

// AllBuckets lists every bucket in display order.
var AllBuckets = []Bucket{
	BucketEatAndDrink, BucketShopping, BucketSights, BucketNightlife,
	BucketOutdoors, BucketEntertainment, BucketWellness,
	BucketEvents, BucketTours,
}

var bucketByTag = map[string]Bucket{
	// eat & drink
	"restaurant": BucketEatAndDrink, "restaurants": BucketEatAndDrink,
	"cafe": BucketEatAndDrink, "coffee": BucketEatAndDrink,
	"bakery": BucketEatAndDrink, "food": BucketEatAndDrink,
	"fast_food": BucketEatAndDrink, "ice_cream": BucketEatAndDrink,
	"bistro": BucketEatAndDrink, "brunch": BucketEatAndDrink,
	"food_truck": BucketEatAndDrink, "deli": BucketEatAndDrink,

	// shopping
	"shopping": BucketShopping, "shop": BucketShopping,
	"mall": BucketShopping, "market": BucketShopping,
	"supermarket": BucketShopping, "boutique": BucketShopping,
	"bookstore": BucketShopping, "department_store": BucketShopping,
	"flea_market": BucketShopping,

	// sights
	"museum": BucketSights, "gallery": BucketSights,
	"landmark": BucketSights, "monument": BucketSights,
	"attraction": BucketSights, "historic": BucketSights,
	"church": BucketSights, "castle": BucketSights,
	"viewpoint": BucketSights, "architecture": BucketSights,

	// nightlife
	"bar": BucketNightlife, "pub": BucketNightlife,
	"nightclub": BucketNightlife, "club": BucketNightlife,
	"cocktail_bar": BucketNightlife, "wine_bar": BucketNightlife,
	"brewery": BucketNightlife, "lounge": BucketNightlife,

	// outdoors
	"park": BucketOutdoors, "garden": BucketOutdoors,
	"beach": BucketOutdoors, "trail": BucketOutdoors,
	"playground": BucketOutdoors, "lake": BucketOutdoors,
	"zoo": BucketOutdoors, "botanical_garden": BucketOutdoors,

	// entertainment
	"cinema": BucketEntertainment, "theater": BucketEntertainment,
	"theatre": BucketEntertainment, "bowling": BucketEntertainment,
	"arcade": BucketEntertainment, "casino": BucketEntertainment,
	"comedy_club": BucketEntertainment, "live_music": BucketEntertainment,

	// wellness
	"spa": BucketWellness, "gym": BucketWellness,
	"fitness": BucketWellness, "yoga": BucketWellness,
	"sauna": BucketWellness, "massage": BucketWellness,
}

// ClassifyPlace maps a place to exactly one bucket. Synthetic entries are
// recognized by id prefix and bypass the tag table; otherwise the first
// category tag found in the table wins. ok is false when no tag maps;
// such places are excluded from filtered results.
func ClassifyPlace(p Place) (Bucket, bool) {
	if strings.HasPrefix(p.ID, eventIDPrefix) {
		return BucketEvents, true
	}
	if strings.HasPrefix(p.ID, tourIDPrefix) {
		return BucketTours, true
	}
	for _, tag := range p.Categories {
		if b, ok := bucketByTag[strings.ToLower(tag)]; ok {
			return b, true
		}
	}
	return "", false
}

// FilterSet is the caller-supplied filter configuration.
type FilterSet struct {
	Buckets  map[Bucket]bool
	TopRated bool // rank by composite score instead of travel time
}

// DefaultFilterSet enables every bucket.
func DefaultFilterSet() FilterSet {
	f := FilterSet{Buckets: make(map[Bucket]bool, len(AllBuckets))}
	for _, b := range AllBuckets {
		f.Buckets[b] = true
	}
	return f
}

func (f FilterSet) Enabled(b Bucket) bool { return f.Buckets[b] }

// Clone returns a copy that shares no state with the receiver.
func (f FilterSet) Clone() FilterSet {
	out := FilterSet{TopRated: f.TopRated, Buckets: make(map[Bucket]bool, len(f.Buckets))}
	for b, on := range f.Buckets {
		out.Buckets[b] = on
	}
	return out
}
