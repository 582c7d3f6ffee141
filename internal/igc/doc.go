// Package igc decodes lines of IGC flight recorder files into typed records.
//
// Each line starts with a one-byte tag naming its record kind. ParseLine
// inspects the tag and hands the line to the matching decoder. The C tag is
// shared by task declarations and task turnpoints; IsTurnpointLine tells
// them apart by the hemisphere letter a turnpoint carries at index 8.
//
// Decoders are pure functions of their input. Text fields are substrings of
// the line, so records keep the line's backing array alive.
package igc
