package symbolic

// Kind tags the variant a cell holds, mirroring dReal's ExpressionKind.
type Kind int

const (
	KindVariable Kind = iota
	KindConstant
	KindRealConstant
	KindNaN
	KindAdd
	KindMul
	KindDiv
	KindLog
	KindAbs
	KindExp
	KindSqrt
	KindPow
	KindSin
	KindCos
	KindTan
	KindAsin
	KindAcos
	KindAtan
	KindAtan2
	KindSinh
	KindCosh
	KindTanh
	KindMin
	KindMax
	KindIfThenElse
	KindUninterpretedFunction
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "Variable"
	case KindConstant:
		return "Constant"
	case KindRealConstant:
		return "RealConstant"
	case KindNaN:
		return "NaN"
	case KindAdd:
		return "Add"
	case KindMul:
		return "Mul"
	case KindDiv:
		return "Div"
	case KindLog:
		return "Log"
	case KindAbs:
		return "Abs"
	case KindExp:
		return "Exp"
	case KindSqrt:
		return "Sqrt"
	case KindPow:
		return "Pow"
	case KindSin:
		return "Sin"
	case KindCos:
		return "Cos"
	case KindTan:
		return "Tan"
	case KindAsin:
		return "Asin"
	case KindAcos:
		return "Acos"
	case KindAtan:
		return "Atan"
	case KindAtan2:
		return "Atan2"
	case KindSinh:
		return "Sinh"
	case KindCosh:
		return "Cosh"
	case KindTanh:
		return "Tanh"
	case KindMin:
		return "Min"
	case KindMax:
		return "Max"
	case KindIfThenElse:
		return "IfThenElse"
	case KindUninterpretedFunction:
		return "UninterpretedFunction"
	default:
		return "Unknown"
	}
}

// isUnary reports whether a kind's composite takes exactly one child
// expression (child1 only).
func (k Kind) isUnary() bool {
	switch k {
	case KindLog, KindAbs, KindExp, KindSqrt, KindSin, KindCos, KindTan,
		KindAsin, KindAcos, KindAtan, KindSinh, KindCosh, KindTanh:
		return true
	default:
		return false
	}
}

// isBinary reports whether a kind's composite takes exactly two child
// expressions (child1, child2).
func (k Kind) isBinary() bool {
	switch k {
	case KindDiv, KindPow, KindAtan2, KindMin, KindMax:
		return true
	default:
		return false
	}
}
