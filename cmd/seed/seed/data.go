package seed

type SeedMember struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	DeviceID  string
}

var Members = []SeedMember{
	{
		Email:     "jane.smith@example.com",
		FirstName: "Jane",
		LastName:  "Smith",
		Phone:     "+1 (234) 567-8892",
		DeviceID:  "lobby-kiosk",
	},
	{
		Email:     "bob.wilson@example.com",
		FirstName: "Bob",
		LastName:  "Wilson",
		Phone:     "+1 (234) 567-8893",
	},
	{
		Email:     "alice.brown@example.com",
		FirstName: "Alice",
		LastName:  "Brown",
		Phone:     "+1 (234) 567-8894",
		DeviceID:  "phone-alice",
	},
	{
		Email:     "john.doe@example.com",
		FirstName: "John",
		LastName:  "Doe",
		Phone:     "+1 (234) 567-8891",
	},
	{
		Email:     "maria.garcia@example.com",
		FirstName: "María",
		LastName:  "García",
		Phone:     "+34 612 345 678",
	},
	{
		Email:     "chloe.oconnor@example.com",
		FirstName: "Chloé",
		LastName:  "O'Connor",
		Phone:     "+353 85 123 4567",
	},
	{
		Email:     "samuel.smithson@example.com",
		FirstName: "Samuel",
		LastName:  "Smithson",
		Phone:     "+1 (234) 567-8895",
		DeviceID:  "lobby-kiosk",
	},
}
