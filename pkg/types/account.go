package types

// Account is one entry from the accounts credential file. The access key
// pair is what the collectors authenticate with; username and password ride
// along from the file but nothing in this codebase uses them.
type Account struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Username        string
	Password        string
}
