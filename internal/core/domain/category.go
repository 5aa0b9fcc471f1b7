package domain

import "github.com/shopspring/decimal"

// CategoryClass partitions the movement taxonomy. The class of a category
// determines which amount side (in or out) a movement uses.
type CategoryClass string

const (
	ClassIncome  CategoryClass = "INCOME"
	ClassExpense CategoryClass = "EXPENSE"
	ClassOutflow CategoryClass = "OUTFLOW"
)

// Category is one label of the fixed movement taxonomy.
type Category string

const (
	// Income categories.
	CategoryVentaContado     Category = "VENTA_CONTADO"
	CategoryAbonoCliente     Category = "ABONO_CLIENTE"
	CategoryDepositoRecibido Category = "DEPOSITO_RECIBIDO"
	CategoryOtroIngreso      Category = "OTRO_INGRESO"
	// CategoryAjusteCierreIngreso is system-generated by the daily closing
	// reconciler when the physical count exceeds the recorded balance.
	CategoryAjusteCierreIngreso Category = "AJUSTE_CIERRE_INGRESO"

	// Expense categories.
	CategoryPagoProveedor Category = "PAGO_PROVEEDOR"
	CategoryPagoServicios Category = "PAGO_SERVICIOS"
	CategoryCompraMenor   Category = "COMPRA_MENOR"
	CategoryOtroGasto     Category = "OTRO_GASTO"
	// CategoryAjusteCierreGasto is system-generated when the physical count
	// falls short of the recorded balance.
	CategoryAjusteCierreGasto Category = "AJUSTE_CIERRE_GASTO"

	// Outflow categories (cash leaving the fund without being an expense).
	CategoryDepositoBanco Category = "DEPOSITO_BANCO"
	CategoryTrasladoFondo Category = "TRASLADO_FONDO"
	CategoryRetiroSocio   Category = "RETIRO_SOCIO"
	CategoryOtraSalida    Category = "OTRA_SALIDA"
)

var categoryClasses = map[Category]CategoryClass{
	CategoryVentaContado:        ClassIncome,
	CategoryAbonoCliente:        ClassIncome,
	CategoryDepositoRecibido:    ClassIncome,
	CategoryOtroIngreso:         ClassIncome,
	CategoryAjusteCierreIngreso: ClassIncome,
	CategoryPagoProveedor:       ClassExpense,
	CategoryPagoServicios:       ClassExpense,
	CategoryCompraMenor:         ClassExpense,
	CategoryOtroGasto:           ClassExpense,
	CategoryAjusteCierreGasto:   ClassExpense,
	CategoryDepositoBanco:       ClassOutflow,
	CategoryTrasladoFondo:       ClassOutflow,
	CategoryRetiroSocio:         ClassOutflow,
	CategoryOtraSalida:          ClassOutflow,
}

// Class returns the category's class and whether the category is a known
// taxonomy label.
func (c Category) Class() (CategoryClass, bool) {
	class, ok := categoryClasses[c]
	return class, ok
}

// IsValid reports whether c is part of the fixed taxonomy.
func (c Category) IsValid() bool {
	_, ok := categoryClasses[c]
	return ok
}

// IsAdjustment reports whether c is one of the system-generated closing
// adjustment categories. Adjustment movements are immutable and carry the
// manager name SystemManager.
func (c Category) IsAdjustment() bool {
	return c == CategoryAjusteCierreIngreso || c == CategoryAjusteCierreGasto
}

// IsUserAssignable reports whether a user may pick c when creating or editing
// a movement. The adjustment labels are reserved for the reconciler.
func (c Category) IsUserAssignable() bool {
	return c.IsValid() && !c.IsAdjustment()
}

// UsesAmountIn reports whether movements of this class carry their amount on
// the inflow side. Expense and outflow classes use the outflow side.
func (cc CategoryClass) UsesAmountIn() bool {
	return cc == ClassIncome
}

// AdjustmentCategoryForDiff selects the adjustment label matching the sign of
// a closing diff: a positive diff (count above balance) books auto-income, a
// negative diff books auto-expense. Zero diffs produce no adjustment and must
// be handled by the caller.
func AdjustmentCategoryForDiff(diff decimal.Decimal) Category {
	if diff.IsPositive() {
		return CategoryAjusteCierreIngreso
	}
	return CategoryAjusteCierreGasto
}
