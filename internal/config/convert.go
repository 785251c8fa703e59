package config

import "strconv"

func itoa(n int) string        { return strconv.Itoa(n) }
func ftoa(f float64) string    { return strconv.FormatFloat(f, 'g', -1, 64) }
func btoa(b bool) string       { return strconv.FormatBool(b) }
