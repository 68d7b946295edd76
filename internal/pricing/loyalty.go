package pricing

const (
	// LoyaltyStepPercent is granted per completed order.
	LoyaltyStepPercent = 5
	// LoyaltyMaxPercent caps the discount.
	LoyaltyMaxPercent = 25
)

// LoyaltyDiscount returns the percentage discount for a customer with the
// given number of completed orders.
func LoyaltyDiscount(completedOrders int) int {
	if completedOrders <= 0 {
		return 0
	}
	return min(completedOrders*LoyaltyStepPercent, LoyaltyMaxPercent)
}

// ApplyDiscount reduces price by percent and rounds to cents.
func ApplyDiscount(price float64, percent int) float64 {
	if percent <= 0 {
		return round(price, 2)
	}
	return round(price*(1-float64(percent)/100), 2)
}
