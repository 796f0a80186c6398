package cmd

// Config carries everything the composition root needs to assemble the
// application: database coordinates, pricing rates, the restaurant's own
// identity for courier pickups, and credentials for whichever POS and
// courier providers this deployment connects to. Providers with no API URL
// configured are simply not registered.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	TaxRatePPM        int64
	ServiceFeeRatePPM int64

	RestaurantName    string
	RestaurantPhone   string
	RestaurantAddress string

	SquareAPIURL      string
	SquareAccessToken string
	SquareLocationID  string

	ToastAPIURL       string
	ToastAPIKey       string
	ToastRestaurantID string

	CloverAPIURL      string
	CloverAccessToken string
	CloverMerchantID  string

	DoorDashAPIURL      string
	DoorDashAccessToken string

	UberAPIURL      string
	UberCustomerID  string
	UberAccessToken string

	CourierProvider   string
	SimulateProviders bool
}
