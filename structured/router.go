package structured

// Credentials holds the per-provider API keys used to decide which structured
// output providers are available.
type Credentials struct {
	OpenAIKey    string
	GoogleKey    string
	AnthropicKey string
}

// PreferenceAuto lets credential availability decide the provider order.
const PreferenceAuto = "auto"

// ProviderOrder resolves a preference ("auto", "openai", "gemini",
// "anthropic") into the ordered list of providers that actually have
// credentials. Under auto, OpenAI leads because its server-side json_schema
// enforcement needs the fewest repairs; an explicit preference is moved to
// the front when its key is present.
func ProviderOrder(preference string, creds Credentials) []string {
	available := map[string]bool{
		"openai":    creds.OpenAIKey != "",
		"gemini":    creds.GoogleKey != "",
		"anthropic": creds.AnthropicKey != "",
	}

	order := []string{"openai", "gemini", "anthropic"}
	if preference != "" && preference != PreferenceAuto && available[preference] {
		reordered := []string{preference}
		for _, p := range order {
			if p != preference {
				reordered = append(reordered, p)
			}
		}
		order = reordered
	}

	var out []string
	for _, p := range order {
		if available[p] {
			out = append(out, p)
		}
	}
	return out
}
