package shared

import "github.com/go-playground/form"

// Decoder decodes url.Values (query strings and form posts) into
// tagged structs.
var Decoder = form.NewDecoder()
