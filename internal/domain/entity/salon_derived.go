package entity

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// RecomputeDerived returns s with Rating, NumberOfReviews and AveragePrice
// recomputed from its reviews and service prices. It must run before every
// persist of a salon.
//
// Rating and NumberOfReviews are left as-is when there are no reviews.
func RecomputeDerived(s Salon) Salon {
	if n := len(s.Reviews); n > 0 {
		total := 0.0
		for _, r := range s.Reviews {
			total += r.Rating
		}
		s.Rating = math.Round(total/float64(n)*10) / 10
		s.NumberOfReviews = n
	}

	sum, count := 0, 0
	for _, c := range s.ServiceCategories {
		for _, svc := range c.Services {
			if p, ok := ParsePrice(svc.Price); ok {
				sum += p
				count++
			}
		}
	}
	s.AveragePrice = DefaultAveragePrice
	if count > 0 {
		s.AveragePrice = FormatPrice(int(math.Round(float64(sum) / float64(count))))
	}
	return s
}

// ParsePrice keeps only the ASCII digits of a currency string ("₹1,200" -> 1200).
func ParsePrice(price string) (int, bool) {
	digits := strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, price)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

func FormatPrice(amount int) string {
	return "₹" + strconv.Itoa(amount)
}
