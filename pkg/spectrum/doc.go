// ABOUTME: Spectrum package turning audio into band features for the dance engine
// ABOUTME: Provides the byte-spectrum analyser and the four-band feature extractor
// Package spectrum reduces audio to the features the dance engine reacts to.
//
// Two stages are provided:
//   - Analyzer: windowed FFT over mono samples producing a byte magnitude
//     spectrum (0-255 per bin) with temporal smoothing and a dB range mapping.
//   - Extract: reduces a byte spectrum to four band energies in [0,1]
//     (bass, mid, high, ultra-high).
//
// Example:
//
//	a := spectrum.NewAnalyzer(spectrum.AnalyzerConfig{FFTSize: 512})
//	a.Write(mono)
//	bins := a.ByteFrequencyData(nil)
//	if bands, ok := spectrum.Extract(bins); ok {
//	    fmt.Println(bands.Bass, bands.Energy())
//	}
package spectrum
