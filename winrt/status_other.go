//go:build !windows

package winrt

func statusMessage(family string, code int32) string { return "" }
