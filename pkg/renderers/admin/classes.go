package admin

// Class names emitted around the settings rows. They match the markup the
// host admin stylesheet already targets.
const (
	ClassFormTable  = "form-table"
	ClassFieldError = "settings-error"
	ClassRowError   = "settings-row-error"
)

// Theme token keys the renderer reads from theme.RendererConfig.Tokens.
const (
	TokenInputClass = "input-class"
	TokenTableClass = "table-class"
)
