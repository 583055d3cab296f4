// internal/generator/locations.go
package generator

// Location is a real (zip, city, state, area code) tuple. Phones generated for
// a profile reuse area codes from this table so they stay geographically
// consistent with the profile's addresses.
type Location struct {
	Zip      string
	City     string
	State    string
	AreaCode string
}

// USLocations is the reference table of real US geography. Addresses never
// invent zip/state pairs; they are always drawn from here.
var USLocations = []Location{
	{"10001", "New York", "NY", "212"},
	{"11201", "Brooklyn", "NY", "718"},
	{"14604", "Rochester", "NY", "585"},
	{"02101", "Boston", "MA", "617"},
	{"01103", "Springfield", "MA", "413"},
	{"06103", "Hartford", "CT", "860"},
	{"02903", "Providence", "RI", "401"},
	{"03101", "Manchester", "NH", "603"},
	{"04101", "Portland", "ME", "207"},
	{"05401", "Burlington", "VT", "802"},
	{"07102", "Newark", "NJ", "973"},
	{"08608", "Trenton", "NJ", "609"},
	{"19103", "Philadelphia", "PA", "215"},
	{"15222", "Pittsburgh", "PA", "412"},
	{"21201", "Baltimore", "MD", "410"},
	{"19801", "Wilmington", "DE", "302"},
	{"20001", "Washington", "DC", "202"},
	{"23219", "Richmond", "VA", "804"},
	{"23510", "Norfolk", "VA", "757"},
	{"25301", "Charleston", "WV", "304"},
	{"27601", "Raleigh", "NC", "919"},
	{"28202", "Charlotte", "NC", "704"},
	{"29201", "Columbia", "SC", "803"},
	{"30303", "Atlanta", "GA", "404"},
	{"31401", "Savannah", "GA", "912"},
	{"32202", "Jacksonville", "FL", "904"},
	{"33130", "Miami", "FL", "305"},
	{"33602", "Tampa", "FL", "813"},
	{"32801", "Orlando", "FL", "407"},
	{"35203", "Birmingham", "AL", "205"},
	{"36104", "Montgomery", "AL", "334"},
	{"37203", "Nashville", "TN", "615"},
	{"38103", "Memphis", "TN", "901"},
	{"40202", "Louisville", "KY", "502"},
	{"39201", "Jackson", "MS", "601"},
	{"70112", "New Orleans", "LA", "504"},
	{"72201", "Little Rock", "AR", "501"},
	{"73102", "Oklahoma City", "OK", "405"},
	{"75201", "Dallas", "TX", "214"},
	{"77002", "Houston", "TX", "713"},
	{"78205", "San Antonio", "TX", "210"},
	{"78701", "Austin", "TX", "512"},
	{"79901", "El Paso", "TX", "915"},
	{"87102", "Albuquerque", "NM", "505"},
	{"85004", "Phoenix", "AZ", "602"},
	{"85701", "Tucson", "AZ", "520"},
	{"80202", "Denver", "CO", "303"},
	{"84101", "Salt Lake City", "UT", "801"},
	{"89101", "Las Vegas", "NV", "702"},
	{"83702", "Boise", "ID", "208"},
	{"59601", "Helena", "MT", "406"},
	{"82001", "Cheyenne", "WY", "307"},
	{"58501", "Bismarck", "ND", "701"},
	{"57501", "Pierre", "SD", "605"},
	{"68102", "Omaha", "NE", "402"},
	{"66603", "Topeka", "KS", "785"},
	{"64106", "Kansas City", "MO", "816"},
	{"63101", "St. Louis", "MO", "314"},
	{"50309", "Des Moines", "IA", "515"},
	{"55401", "Minneapolis", "MN", "612"},
	{"53202", "Milwaukee", "WI", "414"},
	{"60601", "Chicago", "IL", "312"},
	{"62701", "Springfield", "IL", "217"},
	{"46204", "Indianapolis", "IN", "317"},
	{"43215", "Columbus", "OH", "614"},
	{"44114", "Cleveland", "OH", "216"},
	{"45202", "Cincinnati", "OH", "513"},
	{"48226", "Detroit", "MI", "313"},
	{"49503", "Grand Rapids", "MI", "616"},
	{"98101", "Seattle", "WA", "206"},
	{"99201", "Spokane", "WA", "509"},
	{"97204", "Portland", "OR", "503"},
	{"95814", "Sacramento", "CA", "916"},
	{"94102", "San Francisco", "CA", "415"},
	{"90012", "Los Angeles", "CA", "213"},
	{"92101", "San Diego", "CA", "619"},
	{"95113", "San Jose", "CA", "408"},
	{"99501", "Anchorage", "AK", "907"},
	{"96813", "Honolulu", "HI", "808"},
}

var allStates []string

func init() {
	seen := map[string]bool{}
	for _, loc := range USLocations {
		if !seen[loc.State] {
			seen[loc.State] = true
			allStates = append(allStates, loc.State)
		}
	}
}

// AllStates returns every state present in the reference table.
func AllStates() []string {
	out := make([]string, len(allStates))
	copy(out, allStates)
	return out
}

// LocationsByState returns the reference rows for one state, or nil.
func LocationsByState(state string) []Location {
	var out []Location
	for _, loc := range USLocations {
		if loc.State == state {
			out = append(out, loc)
		}
	}
	return out
}
