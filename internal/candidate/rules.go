package candidate

import "hireassist-engine/internal/config"

// DefaultExcludeTags penalise map features that are almost never employers
// worth probing. Any values are matched as case-insensitive substrings.
var DefaultExcludeTags = []config.TagRule{
	{Key: "amenity", Any: []string{"restaurant", "cafe", "bar", "fast_food", "pub", "ice_cream", "food_court", "biergarten"}, Weight: -60},
	{Key: "amenity", Any: []string{"nightclub", "cinema", "theatre", "casino", "gambling"}, Weight: -60},
	{Key: "amenity", Any: []string{"school", "kindergarten", "college", "university", "library"}, Weight: -50},
	{Key: "amenity", Any: []string{"hospital", "clinic", "pharmacy", "dentist", "doctors", "veterinary"}, Weight: -50},
	{Key: "amenity", Any: []string{"place_of_worship", "monastery", "church"}, Weight: -60},
	{Key: "amenity", Any: []string{"bank", "atm", "bureau_de_change", "post_office"}, Weight: -30},
	{Key: "amenity", Any: []string{"fuel", "car_wash", "parking", "bicycle_parking", "charging_station"}, Weight: -50},
	{Key: "amenity", Any: []string{"childcare", "social_facility", "nursing_home", "retirement_home"}, Weight: -50},
	{Key: "shop", Weight: -50},
	{Key: "tourism", Weight: -50},
	{Key: "leisure", Weight: -40},
	{Key: "sport", Weight: -40},
	{Key: "craft", Any: []string{"baker", "butcher", "carpenter", "plumber", "electrician", "painter", "tailor", "hairdresser", "shoemaker", "photographer"}, Weight: -50},
	{Key: "healthcare", Weight: -40},
	{Key: "religion", Weight: -60},
	{Key: "man_made", Any: []string{"tower", "mast", "chimney", "lighthouse", "windmill"}, Weight: -40},
	{Key: "landuse", Any: []string{"residential", "farmland", "cemetery", "forest", "meadow", "recreation_ground"}, Weight: -40},
}

var DefaultPreferTags = []config.TagRule{
	{Key: "office", Any: []string{"company"}, Weight: 20},
	{Key: "office", Any: []string{"it", "ngo", "coworking", "co_working"}, Weight: 25},
	{Key: "office", Any: []string{"research", "architect", "engineer"}, Weight: 20},
	{Key: "office", Any: []string{"financial", "insurance", "consulting", "lawyer", "accountant"}, Weight: 10},
	{Key: "office", Any: []string{"government", "diplomatic", "political_party", "religion"}, Weight: -15},
	{Key: "industrial", Weight: 15},
	{Key: "man_made", Any: []string{"works"}, Weight: 10},
	{Key: "company", Weight: 10},
	{Key: "operator", Weight: 5},
	{Key: "brand", Weight: 5},
}

// DefaultExcludedWords is consumer-service vocabulary (Dutch and English).
// Multi-word entries match as phrases.
var DefaultExcludedWords = []string{
	"restaurant", "eetcafe", "eetcafé", "cafe", "café", "koffie", "coffee", "bistro", "brasserie",
	"bakker", "bakkerij", "bakery", "slagerij", "butcher", "vishandel",
	"kapsalon", "kapper", "hairdresser", "barber", "schoonheidssalon", "beauty",
	"hotel", "hostel", "pension", "bed & breakfast", "bed and breakfast", "b&b",
	"bar", "pub", "lounge", "cocktail", "tapas", "pizzeria", "pizza", "sushi", "wok", "grill", "kebab",
	"supermarkt", "supermarket", "drogisterij", "apotheek", "pharmacy",
	"kerk", "church", "moskee", "mosque", "synagoge",
	"school", "scholengemeenschap", "basisschool", "middelbare",
	"tandarts", "dentist", "huisarts", "fysio", "osteo", "chiropractor", "chiropractie",
	"garage", "autoservice", "autowas", "carwash", "parkeer",
	"sportschool", "gym", "fitness", "zwembad", "tennis", "voetbal",
	"dierenarts", "veterinair",
	"camping", "vakantie", "holiday", "resort",
	"stichting vrienden", "dorpshuis", "wijkcentrum", "buurthuis",
}

// DefaultCorporateWords suggest a real employer.
var DefaultCorporateWords = []string{
	"b.v.", "n.v.", "v.o.f.",
	"group", "holding", "technologies", "technology", "systems", "engineering",
	"industrial", "robotics", "semiconductor", "photonics", "electronics",
	"automation", "logistics", "manufacturing", "consultancy", "consulting",
	"solutions", "software", "digital", "data", "analytics", "cyber",
	"aerospace", "aviation", "energy", "pharma", "biotech", "medtech",
	"ventures", "capital", "partners", "lab", "labs", "research",
	"international", "global",
}
