package auth

// FormatWalletAddress shortens an address for display as
// first6...last4. Addresses shorter than 10 characters are
// returned unchanged.
func FormatWalletAddress(address string) string {
	if len(address) < 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
