package booking

// Service is one offering on the booking form.
type Service struct {
	Key   string
	Label string
	Price float64
}

var catalog = []Service{
	{Key: "basicwash", Label: "Basic Wash - £25 (~30 mins)", Price: 25},
	{Key: "deluxe", Label: "Deluxe - £35 (~45 mins)", Price: 35},
	{Key: "premiumdetailing", Label: "Premium Detailing - £45+ (1-2 hrs)", Price: 45},
}

var timeSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"12:00", "12:30", "13:00", "13:30", "14:00", "14:30",
	"15:00", "15:30", "16:00", "16:30", "17:00", "17:30",
}

// ResolveService maps a form key to its label and price. Unknown keys fall
// back to the raw key with price 0.
func ResolveService(key string) Service {
	for _, svc := range catalog {
		if svc.Key == key {
			return svc
		}
	}
	return Service{Key: key, Label: key, Price: 0}
}

// IsTimeSlot reports whether t is one of the bookable slots.
func IsTimeSlot(t string) bool {
	for _, slot := range timeSlots {
		if slot == t {
			return true
		}
	}
	return false
}
