package paymentmethod

import "strings"

type Method string

func (m Method) Code() string {
	return string(m)
}

func (m Method) Label() string {
	if len(m) == 0 {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

type Enum struct {
	Cash Method
	Card Method
	Bank Method
}

var Methods = Enum{
	Cash: "cash",
	Card: "card",
	Bank: "bank",
}

var All = []Method{
	Methods.Cash,
	Methods.Card,
	Methods.Bank,
}

// ByName returns the method for a given name, or nil if not found
func ByName(name string) *Method {
	for _, m := range All {
		if string(m) == name {
			return &m
		}
	}
	return nil
}
