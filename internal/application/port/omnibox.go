package port

// OmniboxResolver turns free-form address-bar input into a navigable URL.
type OmniboxResolver interface {
	Resolve(input string) (url string)
}
