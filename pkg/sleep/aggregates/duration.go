package aggregates

type Method string

const (
	MethodClock   Method = "clock"
	MethodTokens  Method = "tokens"
	MethodDecimal Method = "decimal"
	MethodInteger Method = "integer"
)

// DurationReport is the result of a successful parse. Normalized is the
// canonical "7h 30m" rendering of Minutes.
type DurationReport struct {
	Minutes    int
	Normalized string
	Method     Method
}
