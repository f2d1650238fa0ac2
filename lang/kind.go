package lang

import "log/slog"

// Kind identifies the lexical class of a [Token].
type Kind uint8

// Token kinds.
const (
	KindNone Kind = iota

	// Literals.
	KindUInt
	KindInt
	KindUFloat
	KindFloat
	KindRational
	KindBool
	KindChar
	KindString
	KindRawString
	KindFormattedChar
	KindFormattedString
	KindFormattedRawString
	KindList

	// Names.
	KindWord
	KindLink

	// Brackets.
	KindCircleBegin
	KindCircleEnd
	KindSquareBegin
	KindSquareEnd
	KindFigureBegin
	KindFigureEnd

	// Arithmetic and assignment.
	KindPlus
	KindUnaryPlus
	KindPlusEquals
	KindMinus
	KindUnaryMinus
	KindMinusEquals
	KindPointer
	KindMultiply
	KindUnaryMultiply
	KindMultiplyEquals
	KindDivide
	KindUnaryDivide
	KindDivideEquals
	KindModulo
	KindUnaryModulo
	KindModuloEquals
	KindUnaryExponent
	KindExponentEquals
	KindEquals

	// Comparison and logic.
	KindGreaterThan
	KindGreaterThanOrEquals
	KindLessThan
	KindLessThanOrEquals
	KindNotEquals
	KindExclusion
	KindJoint
	KindInclusion
	KindDisjoint

	// Mutability markers.
	KindTilde
	KindDoubleTilde

	// Punctuation.
	KindEndline
	KindColon
	KindComma
	KindDot
	KindQuestion
	KindComment

	kindCount
)

var kindNames = [kindCount]string{
	KindNone:                "None",
	KindUInt:                "UInt",
	KindInt:                 "Int",
	KindUFloat:              "UFloat",
	KindFloat:               "Float",
	KindRational:            "Rational",
	KindBool:                "Bool",
	KindChar:                "Char",
	KindString:              "String",
	KindRawString:           "RawString",
	KindFormattedChar:       "FormattedChar",
	KindFormattedString:     "FormattedString",
	KindFormattedRawString:  "FormattedRawString",
	KindList:                "List",
	KindWord:                "Word",
	KindLink:                "Link",
	KindCircleBegin:         "CircleBegin",
	KindCircleEnd:           "CircleEnd",
	KindSquareBegin:         "SquareBegin",
	KindSquareEnd:           "SquareEnd",
	KindFigureBegin:         "FigureBegin",
	KindFigureEnd:           "FigureEnd",
	KindPlus:                "Plus",
	KindUnaryPlus:           "UnaryPlus",
	KindPlusEquals:          "PlusEquals",
	KindMinus:               "Minus",
	KindUnaryMinus:          "UnaryMinus",
	KindMinusEquals:         "MinusEquals",
	KindPointer:             "Pointer",
	KindMultiply:            "Multiply",
	KindUnaryMultiply:       "UnaryMultiply",
	KindMultiplyEquals:      "MultiplyEquals",
	KindDivide:              "Divide",
	KindUnaryDivide:         "UnaryDivide",
	KindDivideEquals:        "DivideEquals",
	KindModulo:              "Modulo",
	KindUnaryModulo:         "UnaryModulo",
	KindModuloEquals:        "ModuloEquals",
	KindUnaryExponent:       "UnaryExponent",
	KindExponentEquals:      "ExponentEquals",
	KindEquals:              "Equals",
	KindGreaterThan:         "GreaterThan",
	KindGreaterThanOrEquals: "GreaterThanOrEquals",
	KindLessThan:            "LessThan",
	KindLessThanOrEquals:    "LessThanOrEquals",
	KindNotEquals:           "NotEquals",
	KindExclusion:           "Exclusion",
	KindJoint:               "Joint",
	KindInclusion:           "Inclusion",
	KindDisjoint:            "Disjoint",
	KindTilde:               "Tilde",
	KindDoubleTilde:         "DoubleTilde",
	KindEndline:             "Endline",
	KindColon:               "Colon",
	KindComma:               "Comma",
	KindDot:                 "Dot",
	KindQuestion:            "Question",
	KindComment:             "Comment",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}

	return "Kind(?)"
}

// typeNames maps the type names usable in scripts to their kinds.
var typeNames = map[string]Kind{
	"UInt":      KindUInt,
	"Int":       KindInt,
	"UFloat":    KindUFloat,
	"Float":     KindFloat,
	"Rational":  KindRational,
	"Bool":      KindBool,
	"Char":      KindChar,
	"String":    KindString,
	"RawString": KindRawString,
	"List":      KindList,
}

// ParseType returns the kind named by a script type name.
func ParseType(name string) (Kind, bool) {
	k, ok := typeNames[name]

	return k, ok
}

// IsNumeric reports whether k is one of the numeric literal kinds.
func (k Kind) IsNumeric() bool {
	return k >= KindUInt && k <= KindRational
}

// IsText reports whether k is a character or string literal kind.
func (k Kind) IsText() bool {
	return k == KindChar || k == KindString || k == KindRawString
}

// IsFormatted reports whether k is an interpolating literal kind.
func (k Kind) IsFormatted() bool {
	return k >= KindFormattedChar && k <= KindFormattedRawString
}

// IsLiteral reports whether a token of kind k is a value.
func (k Kind) IsLiteral() bool {
	return k >= KindUInt && k <= KindList
}

// IsName reports whether k is an identifier or a path.
func (k Kind) IsName() bool { return k == KindWord || k == KindLink }

// IsAssignment reports whether k can separate the target and the value of
// an assignment statement.
func (k Kind) IsAssignment() bool {
	switch k {
	case KindEquals,
		KindPlusEquals, KindMinusEquals, KindMultiplyEquals,
		KindDivideEquals, KindModuloEquals, KindExponentEquals,
		KindUnaryPlus, KindUnaryMinus, KindUnaryMultiply,
		KindUnaryDivide, KindUnaryModulo, KindUnaryExponent:
		return true
	}

	return false
}

// unformatted returns the plain literal kind of an interpolating kind.
func (k Kind) unformatted() Kind {
	switch k {
	case KindFormattedChar:
		return KindChar
	case KindFormattedString:
		return KindString
	case KindFormattedRawString:
		return KindRawString
	}

	return k
}

// formatted returns the interpolating variant of a quoted literal kind.
func (k Kind) formatted() Kind {
	switch k {
	case KindChar:
		return KindFormattedChar
	case KindString:
		return KindFormattedString
	case KindRawString:
		return KindFormattedRawString
	}

	return k
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)

			return nil
		}
	}

	return ErrUnknownType.With(slog.String("kind", string(b)))
}
