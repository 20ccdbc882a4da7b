package pointer

// Bool returns a pointer to the provided bool value
func Bool(value bool) *bool {
	return &value
}

// BoolIfValid returns a pointer to the value if it's valid, otherwise nil
func BoolIfValid(valid bool, value bool) *bool {
	if valid {
		return &value
	}
	return nil
}

// String returns a pointer to the provided string value
func String(value string) *string {
	return &value
}

// StringOrDefault returns the pointer if not nil, otherwise the default value
func StringOrDefault(value *string, defaultValue string) *string {
	if value != nil {
		return value
	}
	return &defaultValue
}
