package folio

import "github.com/eringen/folio/views"

// Message is a contact form submission stored in the inbox.
type Message = views.Message
