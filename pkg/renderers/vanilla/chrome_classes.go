package vanilla

// ChromeClass is a typed identifier for the CSS classes the page runtime
// binds to.
type ChromeClass string

const (
	ClassForm         ChromeClass = "form"
	ClassItem         ChromeClass = "item"
	ClassEdited       ChromeClass = "edited"
	ClassKey          ChromeClass = "key"
	ClassDelimiter    ChromeClass = "delimiter"
	ClassValue        ChromeClass = "value"
	ClassCollection   ChromeClass = "value__collection"
	ClassItems        ChromeClass = "items"
	ClassValueItem    ChromeClass = "value__item"
	ClassWritable     ChromeClass = "writable"
	ClassGenerateSign ChromeClass = "button__generate_sign"
	ClassCanvas       ChromeClass = "value__canvas"
)
