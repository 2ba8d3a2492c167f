package settings

import "github.com/goliatone/go-settingspage/pkg/model"

// Identifiers of the built-in settings tab.
const (
	TabID          = "settings-page-slug"
	SectionLicense = "license"
	LicenseKeyID   = "woocommerce_redirects_license"
	licenseGroupID = "woocommerce_redirects_license_settings"
)

// TabPriority is the position the built-in tab asks for in the host tab
// list; it lands after the host's own tabs.
const TabPriority = 99

// DefaultDefinition returns the built-in settings tab: an overview section
// and a license section holding the license key.
func DefaultDefinition() model.Definition {
	return model.Definition{
		ID:       TabID,
		Label:    "Settings Page Title",
		LabelKey: "settings.tab.label",
		Sections: []model.Section{
			{ID: "", Label: "Overview", LabelKey: "settings.section.overview"},
			{ID: SectionLicense, Label: "License", LabelKey: "settings.section.license"},
		},
		Fields: map[string][]model.Field{
			SectionLicense: {
				{
					ID:             licenseGroupID,
					Type:           model.FieldTypeTitle,
					Title:          "License Settings",
					TitleKey:       "settings.license.title",
					Description:    "Manage your license settings for the WooCommerce Custom Redirects plugin.",
					DescriptionKey: "settings.license.description",
				},
				{
					ID:             LicenseKeyID,
					Type:           model.FieldTypeText,
					Title:          "License Key",
					TitleKey:       "settings.license.key.title",
					Description:    "Add your license key.",
					DescriptionKey: "settings.license.key.description",
					DescTip:        true,
					CSS:            "min-width:300px;",
				},
				{
					ID:   licenseGroupID,
					Type: model.FieldTypeSectionEnd,
				},
			},
		},
	}
}
