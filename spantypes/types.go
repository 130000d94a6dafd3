// Named types shared by negotiators.
package spantypes

// BinData marks a raw binary blob that negotiators should encode natively rather than
// as a list of numbers. The JSON negotiator writes it as a hex string, and the BSON
// negotiator as a Binary primitive of subtype 0x0.
type BinData []byte
