package core

// Payment methods accepted for expenses.
var PaymentMethods = []string{
	"PIX",
	"Cartão de Crédito",
	"Cartão de Débito",
	"Dinheiro",
	"Transferência Bancária",
	"Boleto",
}

// Receipt methods accepted for income.
var ReceiptMethods = []string{
	"PIX",
	"Salário",
	"Dinheiro",
	"Transferência Bancária",
	"Vendas",
}

// MethodsFor returns the methods valid for kind k.
func MethodsFor(k Kind) []string {
	switch k {
	case Income:
		return ReceiptMethods
	case Expense:
		return PaymentMethods
	}
	return nil
}

func ValidMethod(k Kind, method string) bool {
	for _, m := range MethodsFor(k) {
		if m == method {
			return true
		}
	}
	return false
}
