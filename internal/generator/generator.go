// internal/generator/generator.go
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/nfields/obscura-backend/internal/model"
)

// MaxBatchSize caps any single generation request.
const MaxBatchSize = 500

// emailDomains weighted by real-world popularity.
var emailDomains = []struct {
	domain string
	weight float64
}{
	{"gmail.com", 0.45},
	{"yahoo.com", 0.18},
	{"outlook.com", 0.12},
	{"hotmail.com", 0.08},
	{"aol.com", 0.05},
	{"icloud.com", 0.05},
	{"mail.com", 0.03},
	{"protonmail.com", 0.02},
	{"comcast.net", 0.02},
}

var streetSuffixes = []string{
	"St", "Ave", "Blvd", "Dr", "Ln", "Ct", "Pl", "Way", "Rd", "Cir", "Ter",
}

var streetNames = []string{
	"Main", "Oak", "Maple", "Cedar", "Pine", "Elm", "Washington", "Lake",
	"Hill", "Park", "Walnut", "Chestnut", "Spring", "River", "Sunset",
	"Ridge", "Meadow", "Forest", "Highland", "Valley", "Franklin", "Jackson",
}

var maleFirstNames = []string{
	"James", "Robert", "John", "Michael", "David", "William", "Richard",
	"Joseph", "Thomas", "Christopher", "Charles", "Daniel", "Matthew",
	"Anthony", "Mark", "Donald", "Steven", "Andrew", "Paul", "Joshua",
	"Kenneth", "Kevin", "Brian", "Timothy", "Ronald", "Jason", "Edward",
	"Jeffrey", "Ryan", "Jacob", "Gary", "Nicholas", "Eric", "Jonathan",
}

var femaleFirstNames = []string{
	"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Barbara", "Susan",
	"Jessica", "Karen", "Sarah", "Lisa", "Nancy", "Sandra", "Betty", "Ashley",
	"Emily", "Kimberly", "Margaret", "Donna", "Michelle", "Carol", "Amanda",
	"Melissa", "Deborah", "Stephanie", "Rebecca", "Sharon", "Laura", "Cynthia",
	"Dorothy", "Amy", "Kathleen", "Angela", "Shirley",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark",
	"Ramirez", "Lewis", "Robinson", "Walker", "Young", "Allen", "King",
	"Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
}

var employers = []string{
	"Regional Medical Center", "First National Bank", "Summit Logistics",
	"Clearwater Insurance Group", "Pinnacle Manufacturing", "Horizon Telecom",
	"Lakeside School District", "Metro Transit Authority", "Cascade Foods",
	"Brightpath Consulting", "Ironwood Construction", "Harbor Freight Lines",
}

var jobTitles = []string{
	"Account Manager", "Registered Nurse", "Software Developer", "Teacher",
	"Sales Representative", "Operations Supervisor", "Electrician",
	"Administrative Assistant", "Truck Driver", "Project Coordinator",
	"Customer Service Agent", "Warehouse Lead", "Financial Analyst",
}

// Generator produces synthetic person profiles backed by the real-location
// reference table.
type Generator struct {
	rng *rand.Rand
}

func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed exists so tests can get deterministic output.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// triangular samples a triangular distribution on [lo, hi] with the given mode.
func (g *Generator) triangular(lo, hi, mode float64) float64 {
	u := g.rng.Float64()
	c := (mode - lo) / (hi - lo)
	if u < c {
		return lo + math.Sqrt(u*(hi-lo)*(mode-lo))
	}
	return hi - math.Sqrt((1-u)*(hi-lo)*(hi-mode))
}

// weightedAge picks 21-85 weighted toward 30-60.
func (g *Generator) weightedAge() int {
	age := int(g.triangular(21, 85, 42))
	if age < 21 {
		age = 21
	}
	if age > 85 {
		age = 85
	}
	return age
}

func (g *Generator) pickEmailDomain() string {
	r := g.rng.Float64()
	acc := 0.0
	for _, d := range emailDomains {
		acc += d.weight
		if r < acc {
			return d.domain
		}
	}
	return emailDomains[0].domain
}

// weightedCount picks 1, 2 or 3 with 30/50/20 odds.
func (g *Generator) weightedCount() int {
	r := g.rng.Float64()
	switch {
	case r < 0.3:
		return 1
	case r < 0.8:
		return 2
	default:
		return 3
	}
}

func (g *Generator) pickLocation(state string) Location {
	if state != "" {
		if locs := LocationsByState(state); len(locs) > 0 {
			return locs[g.rng.Intn(len(locs))]
		}
	}
	return USLocations[g.rng.Intn(len(USLocations))]
}

func (g *Generator) street() string {
	num := 100 + g.rng.Intn(19900)
	var name string
	if g.rng.Float64() < 0.5 {
		name = streetNames[g.rng.Intn(len(streetNames))]
	} else {
		// first names make plausible street names too ("Franklin Ave")
		name = maleFirstNames[g.rng.Intn(len(maleFirstNames))]
	}
	return fmt.Sprintf("%d %s %s", num, name, streetSuffixes[g.rng.Intn(len(streetSuffixes))])
}

func (g *Generator) phone(areaCode string) string {
	exchange := 200 + g.rng.Intn(800)
	subscriber := 1000 + g.rng.Intn(9000)
	return fmt.Sprintf("(%s) %d-%d", areaCode, exchange, subscriber)
}

func (g *Generator) dobFromAge(age int) string {
	now := time.Now()
	year := now.Year() - age
	month := 1 + g.rng.Intn(12)
	maxDay := 28
	switch time.Month(month) {
	case time.January, time.March, time.May, time.July, time.August, time.October, time.December:
		maxDay = 31
	case time.April, time.June, time.September, time.November:
		maxDay = 30
	}
	day := 1 + g.rng.Intn(maxDay)
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func (g *Generator) emails(first, last string, middle *string) []string {
	fl := strings.ToLower(first)
	ll := strings.ToLower(last)
	midInit := ""
	if middle != nil && *middle != "" {
		midInit = strings.ToLower((*middle)[:1])
	}

	patterns := []string{
		fl + "." + ll,
		fl + "_" + ll,
		fl + ll,
		ll + "." + fl,
		fmt.Sprintf("%s%d", fl, 1+g.rng.Intn(99)),
		fmt.Sprintf("%s.%s%d", fl, ll, 1+g.rng.Intn(999)),
	}
	// initial-based patterns need both parts present
	if fl != "" && ll != "" {
		patterns = append(patterns, fl[:1]+ll, fl+ll[:1])
	}
	if midInit != "" {
		patterns = append(patterns, fl+"."+midInit+"."+ll)
	}

	count := g.weightedCount()
	g.rng.Shuffle(len(patterns), func(i, j int) { patterns[i], patterns[j] = patterns[j], patterns[i] })
	if count > len(patterns) {
		count = len(patterns)
	}

	emails := make([]string, 0, count)
	for _, local := range patterns[:count] {
		local = sanitizeLocal(local)
		emails = append(emails, local+"@"+g.pickEmailDomain())
	}
	return emails
}

func sanitizeLocal(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '.' || c == '_' || c == '-' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// relatives generates 2-5 names, 60% sharing the subject's last name.
func (g *Generator) relatives(lastName string) []string {
	count := 2 + g.rng.Intn(4)
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		relLast := lastName
		if g.rng.Float64() >= 0.6 {
			relLast = lastNames[g.rng.Intn(len(lastNames))]
		}
		var relFirst string
		if g.rng.Intn(2) == 0 {
			relFirst = maleFirstNames[g.rng.Intn(len(maleFirstNames))]
		} else {
			relFirst = femaleFirstNames[g.rng.Intn(len(femaleFirstNames))]
		}
		out = append(out, relFirst+" "+relLast)
	}
	return out
}

// Generate produces a single fake person profile constrained by the optional
// template.
func (g *Generator) Generate(template *model.ProfileTemplate) model.Profile {
	if template == nil {
		template = &model.ProfileTemplate{}
	}

	gender := template.Gender
	if gender != "M" && gender != "F" {
		gender = []string{"M", "F"}[g.rng.Intn(2)]
	}

	var firstName string
	var middleName *string
	if gender == "M" {
		firstName = maleFirstNames[g.rng.Intn(len(maleFirstNames))]
		if g.rng.Float64() < 0.7 {
			m := maleFirstNames[g.rng.Intn(len(maleFirstNames))]
			middleName = &m
		}
	} else {
		firstName = femaleFirstNames[g.rng.Intn(len(femaleFirstNames))]
		if g.rng.Float64() < 0.7 {
			m := femaleFirstNames[g.rng.Intn(len(femaleFirstNames))]
			middleName = &m
		}
	}
	lastName := lastNames[g.rng.Intn(len(lastNames))]

	var age int
	if len(template.AgeRange) == 2 {
		lo, hi := template.AgeRange[0], template.AgeRange[1]
		age = int(g.triangular(float64(lo), float64(hi), float64(lo+hi)/2))
		if age < lo {
			age = lo
		}
		if age > hi {
			age = hi
		}
	} else {
		age = g.weightedAge()
	}

	numAddresses := template.CountAddresses
	if numAddresses == 0 {
		numAddresses = g.weightedCount()
	}
	if numAddresses < 1 {
		numAddresses = 1
	}
	if numAddresses > 4 {
		numAddresses = 4
	}

	addresses := make([]model.Address, 0, numAddresses)
	usedZips := map[string]bool{}
	for i := 0; i < numAddresses; i++ {
		loc := g.pickLocation(template.State)
		for attempts := 0; usedZips[loc.Zip] && attempts < 10; attempts++ {
			loc = g.pickLocation(template.State)
		}
		usedZips[loc.Zip] = true

		addrType := "previous"
		if i == 0 {
			addrType = "current"
		}
		addresses = append(addresses, model.Address{
			Street: g.street(),
			City:   loc.City,
			State:  loc.State,
			Zip:    loc.Zip,
			Type:   addrType,
		})
	}

	numPhones := template.CountPhones
	if numPhones == 0 {
		numPhones = g.weightedCount()
	}
	if numPhones < 1 {
		numPhones = 1
	}
	if numPhones > 3 {
		numPhones = 3
	}

	phoneTypes := []string{"mobile", "home", "work"}
	phones := make([]model.Phone, 0, numPhones)
	for i := 0; i < numPhones; i++ {
		// area code from the same state as one of the addresses
		addr := addresses[i%len(addresses)]
		loc := g.pickLocation(addr.State)
		ptype := "mobile"
		if i < len(phoneTypes) {
			ptype = phoneTypes[i]
		}
		phones = append(phones, model.Phone{Number: g.phone(loc.AreaCode), Type: ptype})
	}

	var employment model.Employment
	if g.rng.Float64() < 0.75 {
		emp := employers[g.rng.Intn(len(employers))]
		title := jobTitles[g.rng.Intn(len(jobTitles))]
		employment = model.Employment{Employer: &emp, Title: &title}
	}

	return model.Profile{
		FirstName:    firstName,
		LastName:     lastName,
		MiddleName:   middleName,
		Age:          age,
		DateOfBirth:  g.dobFromAge(age),
		Gender:       gender,
		Addresses:    addresses,
		PhoneNumbers: phones,
		Emails:       g.emails(firstName, lastName, middleName),
		Relatives:    g.relatives(lastName),
		Employment:   employment,
	}
}

// GenerateBatch produces count profiles with best-effort name uniqueness
// (bounded retries, never guaranteed).
func (g *Generator) GenerateBatch(count int, template *model.ProfileTemplate) []model.Profile {
	if count > MaxBatchSize {
		count = MaxBatchSize
	}

	profiles := make([]model.Profile, 0, count)
	seen := map[string]bool{}

	for i := 0; i < count; i++ {
		var profile model.Profile
		for attempt := 0; attempt < 5; attempt++ {
			profile = g.Generate(template)
			key := profile.FirstName + "|" + profile.LastName
			if !seen[key] {
				seen[key] = true
				break
			}
		}
		profiles = append(profiles, profile)
	}
	return profiles
}

// GeneratePoisoning produces count profiles that all carry the target's real
// name while everything around the name stays independently varied. With a
// known real state, ~30% of profiles land there and the rest scatter; with a
// known real age, ages fall within +/-7 years of it.
func (g *Generator) GeneratePoisoning(firstName, lastName string, count int, realState *string, realAge *int) []model.Profile {
	if count > MaxBatchSize {
		count = MaxBatchSize
	}

	profiles := make([]model.Profile, 0, count)
	for i := 0; i < count; i++ {
		template := &model.ProfileTemplate{}

		if realState != nil && *realState != "" {
			if g.rng.Float64() < 0.3 {
				template.State = *realState
			} else {
				others := make([]string, 0, len(allStates))
				for _, s := range AllStates() {
					if s != *realState {
						others = append(others, s)
					}
				}
				if len(others) > 0 {
					template.State = others[g.rng.Intn(len(others))]
				}
			}
		}

		if realAge != nil && *realAge > 0 {
			lo := *realAge - 7
			if lo < 21 {
				lo = 21
			}
			hi := *realAge + 7
			if hi > 85 {
				hi = 85
			}
			template.AgeRange = []int{lo, hi}
		}

		profile := g.Generate(template)

		// overwrite the name with the real target's, then regenerate the
		// name-derived fields so they reference it
		profile.FirstName = firstName
		profile.LastName = lastName
		profile.Emails = g.emails(firstName, lastName, profile.MiddleName)
		profile.Relatives = g.relatives(lastName)

		profiles = append(profiles, profile)
	}
	return profiles
}
