package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/citation-audit/internal/model"
)

// businessFlags holds the shared --name/--city/... flag values used by
// every command that needs the business ground truth.
type businessFlags struct {
	profilePath string
	name        string
	alias       string
	street      string
	city        string
	region      string
	postalCode  string
	country     string
	phone       string
	website     string
	category    string
}

func (b *businessFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&b.profilePath, "profile", "", "path to a JSON business profile (overrides other flags)")
	cmd.Flags().StringVar(&b.name, "name", "", "business name")
	cmd.Flags().StringVar(&b.alias, "practitioner", "", "practitioner name, e.g. \"Dr. Jane Smith\"")
	cmd.Flags().StringVar(&b.street, "street", "", "street address")
	cmd.Flags().StringVar(&b.city, "city", "", "city")
	cmd.Flags().StringVar(&b.region, "region", "", "state or province")
	cmd.Flags().StringVar(&b.postalCode, "postal", "", "postal code")
	cmd.Flags().StringVar(&b.country, "country", "", "country (defaults to United States)")
	cmd.Flags().StringVar(&b.phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&b.website, "website", "", "website URL")
	cmd.Flags().StringVar(&b.category, "category", "", "service category, e.g. general_dentistry")
}

// load builds the BusinessProfile from the --profile file or the
// individual flags. The name is required either way.
func (b *businessFlags) load() (model.BusinessProfile, error) {
	if b.profilePath != "" {
		data, err := os.ReadFile(b.profilePath)
		if err != nil {
			return model.BusinessProfile{}, eris.Wrapf(err, "read profile %s", b.profilePath)
		}
		var business model.BusinessProfile
		if err := json.Unmarshal(data, &business); err != nil {
			return model.BusinessProfile{}, eris.Wrapf(err, "parse profile %s", b.profilePath)
		}
		if business.Name == "" {
			return model.BusinessProfile{}, eris.Errorf("profile %s has no business name", b.profilePath)
		}
		return business, nil
	}

	if b.name == "" {
		return model.BusinessProfile{}, eris.New("--name or --profile is required")
	}
	return model.BusinessProfile{
		Name:       b.name,
		Alias:      b.alias,
		Street:     b.street,
		City:       b.city,
		Region:     b.region,
		PostalCode: b.postalCode,
		Country:    b.country,
		Phone:      b.phone,
		Website:    b.website,
		Category:   b.category,
	}, nil
}

// printJSON writes v to stdout, indented.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
