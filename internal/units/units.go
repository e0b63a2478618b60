package units

import (
	"fmt"
	"math"
	"strings"
)

// Category identifies a family of mutually convertible units.
// A Value's category is fixed by its unit and never changes.
type Category int

const (
	// Dimensionless is the category of bare numbers with no unit suffix.
	Dimensionless Category = iota
	Temperature
	Pressure
	Percent
	Length
	Time
	Voltage
	Current
	Power
	Resistance
	Illuminance
	Frequency
)

// categoryNames maps categories to human-readable names for error messages.
var categoryNames = map[Category]string{
	Dimensionless: "dimensionless",
	Temperature:   "temperature",
	Pressure:      "pressure",
	Percent:       "percent",
	Length:        "length",
	Time:          "time",
	Voltage:       "voltage",
	Current:       "current",
	Power:         "power",
	Resistance:    "resistance",
	Illuminance:   "illuminance",
	Frequency:     "frequency",
}

// String returns the category name (e.g., "temperature").
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Epsilon returns the tolerance used for equality comparisons between
// SI-normalised magnitudes of this category. The == and != operators in
// threshold expressions use this tolerance rather than bitwise equality.
func (c Category) Epsilon() float64 {
	if eps, ok := categoryEpsilons[c]; ok {
		return eps
	}
	return defaultEpsilon
}

// defaultEpsilon is the equality tolerance for categories without a
// specific entry below.
const defaultEpsilon = 1e-9

// categoryEpsilons holds per-category equality tolerances in SI magnitude.
// Sensor categories whose SI representation is far from unity scale get a
// correspondingly scaled tolerance.
var categoryEpsilons = map[Category]float64{
	Temperature: 1e-6, // Kelvin
	Pressure:    1e-4, // Pascal; 1e-4 Pa is far below any sensor resolution
	Illuminance: 1e-6, // lux
	Frequency:   1e-6, // Hertz
}

// Unit is a unit tag such as "°C" or "hPa". The zero value ("") is the
// dimensionless unit.
type Unit string

// Recognised units. Aliases (e.g., "C" for "°C", "RH" for "%") share the
// conversion rule of their canonical spelling.
const (
	None Unit = "" // dimensionless

	// Temperature
	Celsius    Unit = "°C"
	Fahrenheit Unit = "°F"
	Kelvin     Unit = "K"

	// Pressure
	Pascal      Unit = "Pa"
	Hectopascal Unit = "hPa"
	Kilopascal  Unit = "kPa"
	Bar         Unit = "bar"
	Millibar    Unit = "mbar"
	PSI         Unit = "psi"
	Atmosphere  Unit = "atm"
	MmHg        Unit = "mmHg"

	// Percent / relative humidity (one category; all aliases)
	PercentSign      Unit = "%"
	RelativeHumidity Unit = "RH"
	PercentRH        Unit = "%RH"

	// Length
	Metre      Unit = "m"
	Millimetre Unit = "mm"
	Centimetre Unit = "cm"
	Kilometre  Unit = "km"
	Inch       Unit = "in"
	Foot       Unit = "ft"

	// Time
	Second      Unit = "s"
	Millisecond Unit = "ms"
	Microsecond Unit = "µs"
	Minute      Unit = "min"
	Hour        Unit = "h"

	// Voltage
	Volt      Unit = "V"
	Millivolt Unit = "mV"
	Kilovolt  Unit = "kV"

	// Current
	Ampere      Unit = "A"
	Milliampere Unit = "mA"
	Microampere Unit = "µA"

	// Power
	Watt      Unit = "W"
	Milliwatt Unit = "mW"
	Kilowatt  Unit = "kW"

	// Resistance
	Ohm     Unit = "Ω"
	Kiloohm Unit = "kΩ"
	Megaohm Unit = "MΩ"

	// Illuminance
	Lux Unit = "lx"

	// Frequency
	Hertz     Unit = "Hz"
	Kilohertz Unit = "kHz"
	Megahertz Unit = "MHz"
)

// conversion is an affine transform to the category's SI unit:
// si = scale*x + offset. The inverse is x = (si - offset) / scale.
type conversion struct {
	category Category
	scale    float64
	offset   float64
}

// conversions maps every recognised unit to its SI transform.
var conversions = map[Unit]conversion{
	None: {Dimensionless, 1, 0},

	Celsius:    {Temperature, 1, 273.15},
	Fahrenheit: {Temperature, 5.0 / 9.0, 273.15 - 32.0*5.0/9.0},
	Kelvin:     {Temperature, 1, 0},

	Pascal:      {Pressure, 1, 0},
	Hectopascal: {Pressure, 100, 0},
	Kilopascal:  {Pressure, 1000, 0},
	Bar:         {Pressure, 100000, 0},
	Millibar:    {Pressure, 100, 0},
	PSI:         {Pressure, 6894.757293168, 0},
	Atmosphere:  {Pressure, 101325, 0},
	MmHg:        {Pressure, 133.322387415, 0},

	PercentSign:      {Percent, 0.01, 0},
	RelativeHumidity: {Percent, 0.01, 0},
	PercentRH:        {Percent, 0.01, 0},

	Metre:      {Length, 1, 0},
	Millimetre: {Length, 0.001, 0},
	Centimetre: {Length, 0.01, 0},
	Kilometre:  {Length, 1000, 0},
	Inch:       {Length, 0.0254, 0},
	Foot:       {Length, 0.3048, 0},

	Second:      {Time, 1, 0},
	Millisecond: {Time, 0.001, 0},
	Microsecond: {Time, 1e-6, 0},
	Minute:      {Time, 60, 0},
	Hour:        {Time, 3600, 0},

	Volt:      {Voltage, 1, 0},
	Millivolt: {Voltage, 0.001, 0},
	Kilovolt:  {Voltage, 1000, 0},

	Ampere:      {Current, 1, 0},
	Milliampere: {Current, 0.001, 0},
	Microampere: {Current, 1e-6, 0},

	Watt:      {Power, 1, 0},
	Milliwatt: {Power, 0.001, 0},
	Kilowatt:  {Power, 1000, 0},

	Ohm:     {Resistance, 1, 0},
	Kiloohm: {Resistance, 1000, 0},
	Megaohm: {Resistance, 1e6, 0},

	Lux: {Illuminance, 1, 0},

	Hertz:     {Frequency, 1, 0},
	Kilohertz: {Frequency, 1000, 0},
	Megahertz: {Frequency, 1e6, 0},
}

// suffixAliases maps alternative spellings to canonical unit tags.
// Lookup is attempted verbatim first, then through this table.
var suffixAliases = map[string]Unit{
	"C":    Celsius,
	"F":    Fahrenheit,
	"degC": Celsius,
	"degF": Fahrenheit,
	"us":   Microsecond,
	"uA":   Microampere,
	"ohm":  Ohm,
	"kohm": Kiloohm,
	"Mohm": Megaohm,
	"lux":  Lux,
}

// Lookup resolves a unit suffix to its canonical Unit tag.
// It accepts canonical spellings ("°C", "hPa") and common ASCII aliases
// ("C", "ohm", "lux"). The empty string resolves to the dimensionless unit.
func Lookup(suffix string) (Unit, bool) {
	if suffix == "" {
		return None, true
	}
	if _, ok := conversions[Unit(suffix)]; ok {
		return Unit(suffix), true
	}
	if u, ok := suffixAliases[suffix]; ok {
		return u, true
	}
	return None, false
}

// Category returns the unit's category. Unknown units report Dimensionless;
// use Lookup to validate a suffix first.
func (u Unit) Category() Category {
	if conv, ok := conversions[u]; ok {
		return conv.category
	}
	return Dimensionless
}

// Valid reports whether the unit is recognised.
func (u Unit) Valid() bool {
	_, ok := conversions[u]
	return ok
}

// Value is a magnitude paired with its unit. The category is fixed at
// parse time and never changes.
type Value struct {
	Magnitude float64
	Unit      Unit
}

// SI returns the magnitude converted to the category's canonical SI unit.
func (v Value) SI() float64 {
	conv := conversions[v.Unit]
	return conv.scale*v.Magnitude + conv.offset
}

// Category returns the value's unit category.
func (v Value) Category() Category {
	return v.Unit.Category()
}

// String renders the value with its unit suffix, e.g. "25°C" or "42".
func (v Value) String() string {
	mag := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", v.Magnitude), "0"), ".")
	return mag + string(v.Unit)
}

// Equal reports whether two values of the same category are equal within
// the category's epsilon after SI normalisation. Comparing values of
// different categories returns an IncompatibleUnitsError.
func (v Value) Equal(other Value) (bool, error) {
	if v.Category() != other.Category() {
		return false, &IncompatibleUnitsError{From: v.Category(), To: other.Category()}
	}
	return math.Abs(v.SI()-other.SI()) <= v.Category().Epsilon(), nil
}

// FromSI converts an SI-canonical magnitude back into the given unit.
func FromSI(si float64, to Unit) float64 {
	conv := conversions[to]
	return (si - conv.offset) / conv.scale
}

// Convert converts a magnitude between two compatible units.
//
// Returns an IncompatibleUnitsError if the units belong to different
// categories.
func Convert(magnitude float64, from, to Unit) (float64, error) {
	fc, ok := conversions[from]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, string(from))
	}
	tc, ok := conversions[to]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, string(to))
	}
	if fc.category != tc.category {
		return 0, &IncompatibleUnitsError{From: fc.category, To: tc.category}
	}
	return FromSI(fc.scale*magnitude+fc.offset, to), nil
}

// ParseValue splits a trailing unit suffix from a leading signed numeric
// literal and returns the combined Value.
//
// Accepted forms: "25°C", "-12.5C", "1013.25hPa", "80%", "3.3V", "42".
// A literal without a suffix is dimensionless.
//
// Returns ErrNoNumber when the numeric prefix is absent and ErrUnknownUnit
// when the suffix is not a recognised unit.
func ParseValue(text string) (Value, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Value{}, fmt.Errorf("%w: empty input", ErrNoNumber)
	}

	numEnd := scanNumber(s)
	if numEnd == 0 {
		return Value{}, fmt.Errorf("%w: %q", ErrNoNumber, text)
	}

	var magnitude float64
	if _, err := fmt.Sscanf(s[:numEnd], "%g", &magnitude); err != nil {
		return Value{}, fmt.Errorf("%w: %q", ErrNoNumber, text)
	}

	suffix := strings.TrimSpace(s[numEnd:])
	unit, ok := Lookup(suffix)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownUnit, suffix)
	}

	return Value{Magnitude: magnitude, Unit: unit}, nil
}

// scanNumber returns the length of the leading numeric literal in s:
// an optional sign, digits, an optional fractional part and an optional
// exponent. Returns 0 if s does not start with a number.
func scanNumber(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digitsStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i == digitsStart {
		return 0 // sign or dot with no digits
	}
	// Optional exponent; only consumed if well-formed.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expStart := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > expStart {
			i = j
		}
	}
	return i
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
