package hxasset

import "strings"

// DefaultCategory is the message category passed to translators unless a
// Publisher is configured with WithCategory.
const DefaultCategory = "hxasset"

// Message templates used for publish errors. Placeholders in braces are
// replaced by the Translator; translators may key on these strings.
const (
	MsgDirectoryNotFound     = `{owner} - Error: Couldn't find assets to publish. Please make sure the directory "{dir}" exists and is readable.`
	MsgSystemManagerNotFound = `{owner} - Error: The system asset manager could not be found.`
	MsgNamedManagerNotFound  = `{owner} - Error: The asset manager named "{manager}" could not be found.`
	MsgPublishFailed         = `{owner} - Error: Publishing "{dir}" failed: {cause}`
)

// Translator localizes publish error messages.
//
// Translate receives the category, one of the Msg* templates and the
// placeholder values (keys include the braces, e.g. "{dir}"). It returns the
// final message text.
type Translator interface {
	Translate(category, message string, params map[string]string) string
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(category, message string, params map[string]string) string

// Translate calls f(category, message, params).
func (f TranslatorFunc) Translate(category, message string, params map[string]string) string {
	return f(category, message, params)
}

// Interpolate is the default Translator: it ignores the category and
// substitutes params into message.
var Interpolate Translator = TranslatorFunc(func(_ string, message string, params map[string]string) string {
	return interpolate(message, params)
})

// interpolate replaces each {key} in message with its value.
func interpolate(message string, params map[string]string) string {
	if len(params) == 0 {
		return message
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(message)
}
