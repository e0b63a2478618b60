// Package units provides the physical-unit algebra for BitBound Core.
//
// Every recognised unit belongs to exactly one Category (temperature,
// pressure, percent, length, ...). Each unit carries an affine conversion
// to the category's canonical SI unit (Kelvin, Pascal, fraction 0..1,
// metre, second, ...), so any two units of the same category can be
// compared or converted through SI.
//
// # Key Types
//
//   - Unit: a unit tag such as "°C", "hPa" or "%"
//   - Category: a family of mutually convertible units
//   - Value: a magnitude paired with its unit
//
// # Usage
//
//	v, err := units.ParseValue("1013.25hPa")
//	if err != nil {
//	    return err
//	}
//	pa := v.SI() // 101325.0
//
//	psi, err := units.Convert(1.0, units.Bar, units.PSI)
//
// # Thread Safety
//
// The conversion table is immutable after package initialisation. All
// functions and Value methods are safe for concurrent use.
package units
