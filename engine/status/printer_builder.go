package status

import "github.com/muesli/termenv"

// PrinterBuilderOption is a functional option for configuring a printer.
type PrinterBuilderOption func(*printer)

// WithHelp toggles the voice and keyboard help below the panel.
//
// Parameters:
//   - show: true to print the help
//
// Returns:
//   - PrinterBuilderOption: option function to apply
func WithHelp(show bool) PrinterBuilderOption {
	return func(p *printer) {
		p.help = show
	}
}

// WithProfile forces a color profile instead of detecting it from the writer.
//
// Parameters:
//   - profile: the profile, e.g. termenv.Ascii for plain text
//
// Returns:
//   - PrinterBuilderOption: option function to apply
func WithProfile(profile termenv.Profile) PrinterBuilderOption {
	return func(p *printer) {
		p.profile = &profile
	}
}
