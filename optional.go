package recgen

import "strconv"

// Optional attribute values cross the generic text interface in a
// parenthesized encoding: the empty string means absent, and "(v)"
// means present with inner text v. A missing opening or closing
// parenthesis is reported distinctly from an unparsable inner value.

// ParseOptional splits the optional encoding into its inner text.
// It returns ok=false for the empty (absent) input and a ParseError
// wrapping ErrMissingOpenParen or ErrMissingCloseParen for malformed
// input. The inner text itself is not interpreted.
func ParseOptional(s string) (inner string, ok bool, err error) {
	if s == "" {
		return "", false, nil
	}
	if s[0] != '(' {
		return "", false, NewParseError(s, ErrMissingOpenParen)
	}
	if s[len(s)-1] != ')' {
		return "", false, NewParseError(s, ErrMissingCloseParen)
	}
	return s[1 : len(s)-1], true, nil
}

// ParseOptionalInt parses the optional encoding of an integer value.
// A nil result means absent.
func ParseOptionalInt(s string) (*int64, error) {
	inner, ok, err := ParseOptional(s)
	if err != nil || !ok {
		return nil, err
	}
	v, err := strconv.ParseInt(inner, 10, 64)
	if err != nil {
		return nil, NewParseError(s, err)
	}
	return &v, nil
}

// ParseOptionalString parses the optional encoding of a string value.
// A nil result means absent. The inner text may be empty.
func ParseOptionalString(s string) (*string, error) {
	inner, ok, err := ParseOptional(s)
	if err != nil || !ok {
		return nil, err
	}
	return &inner, nil
}

// ParseInt parses a mandatory integer value.
func ParseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, NewParseError(s, err)
	}
	return v, nil
}

// FormatOptional wraps a present value in the optional encoding.
func FormatOptional(inner string) string {
	return "(" + inner + ")"
}

// FormatOptionalInt encodes an optional integer value.
func FormatOptionalInt(v *int64) string {
	if v == nil {
		return ""
	}
	return FormatOptional(strconv.FormatInt(*v, 10))
}

// FormatOptionalString encodes an optional string value.
func FormatOptionalString(v *string) string {
	if v == nil {
		return ""
	}
	return FormatOptional(*v)
}
