package common

func Min(l, r int) int {
	if l < r {
		return l
	}
	return r
}

func Max(l, r int) int {
	if l > r {
		return l
	}
	return r
}

func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func let(ok bool, yes, no int) int {
	if ok {
		return yes
	}
	return no
}
