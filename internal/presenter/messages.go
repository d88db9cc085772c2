package presenter

// Messages spoken by the presenter
const (
	MsgBlank        = "blank"
	MsgWhiteSpace   = "white space"
	MsgStart        = "Entering flat review."
	MsgStop         = "Leaving flat review."
	MsgNotIn        = "Not using flat review."
	MsgCopied       = "Copied contents to clipboard."
	MsgAppended     = "Appended contents to clipboard."
	MsgRestricted   = "Flat review restricted to current object."
	MsgUnrestricted = "Flat review unrestricted."
	MsgNotFound     = "string not found"
	MsgWrapTop      = "Wrapping to top."
	MsgWrapBottom   = "Wrapping to bottom."
)
