package reservation

// apportionCents splits the tendered amount across n slots.  The
// division remainder goes to the earliest slots one cent at a time
// so the per-slot amounts always sum to the tendered total.  A
// zero tender falls back to the venue's configured advance per
// slot.  This is the single pricing rule for every booking path;
// remaining is always slot price minus received, floored at zero.
func apportionCents(amount uint32, n int, advance uint32) []uint32 {
	out := make([]uint32, n)
	if amount == 0 {
		for i := range out {
			out[i] = advance
		}
		return out
	}
	per := amount / uint32(n)
	rem := amount % uint32(n)
	for i := range out {
		out[i] = per
		if uint32(i) < rem {
			out[i]++
		}
	}
	return out
}

func remainingCents(price, received uint32) uint32 {
	if received >= price {
		return 0
	}
	return price - received
}
