//go:build !cgo

package normalizer

func newPlatform() NameNormalizer { return AsciiNormalizer{} }
