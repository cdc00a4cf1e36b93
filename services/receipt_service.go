package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/pos-app/models"
	"github.com/yeremiapane/pos-app/utils"
)

// Printer is whatever ultimately puts the receipt in front of the customer
// (thermal printer, share sheet, ...). A failing printer is its own problem:
// the sale it renders is already committed and stays committed.
type Printer interface {
	Print(doc ReceiptDocument) error
}

type ReceiptDocument struct {
	Number string `json:"number"`
	Body   string `json:"body"`
}

// LogPrinter is the default sink; it writes receipts to the info log.
type LogPrinter struct{}

func (LogPrinter) Print(doc ReceiptDocument) error {
	utils.InfoLogger.Printf("Receipt %s:\n%s", doc.Number, doc.Body)
	return nil
}

type ReceiptService struct {
	StoreName string
	Printer   Printer
}

func NewReceiptService(storeName string, printer Printer) *ReceiptService {
	if storeName == "" {
		storeName = "POS"
	}
	if printer == nil {
		printer = LogPrinter{}
	}
	return &ReceiptService{StoreName: storeName, Printer: printer}
}

// Render builds the printable document from a committed sale. Change is
// display data supplied by the caller; it is not a ledger field.
func (rc *ReceiptService) Render(sale *models.Sale, change float64) ReceiptDocument {
	number := fmt.Sprintf("RCP/%s/%06d", sale.Date.Format("20060102"), sale.ID)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", rc.StoreName)
	fmt.Fprintf(&b, "Receipt %s\n", number)
	fmt.Fprintf(&b, "%s\n", sale.Date.Format(time.DateTime))
	b.WriteString(strings.Repeat("-", 32) + "\n")
	for _, item := range sale.Items {
		fmt.Fprintf(&b, "%-18s x%-3d %9s\n",
			item.ProductName, item.Quantity, utils.FormatCurrency(item.Subtotal))
	}
	b.WriteString(strings.Repeat("-", 32) + "\n")
	fmt.Fprintf(&b, "TOTAL %26s\n", utils.FormatCurrency(sale.Total))
	fmt.Fprintf(&b, "Paid by %s\n", sale.PaymentMethod)
	if sale.PaymentMethod == models.PaymentMixed {
		fmt.Fprintf(&b, "  cash     %9s\n", utils.FormatCurrency(sale.CashAmount))
		fmt.Fprintf(&b, "  transfer %9s\n", utils.FormatCurrency(sale.TransferAmount))
	}
	if change > 0 {
		fmt.Fprintf(&b, "Change %25s\n", utils.FormatCurrency(change))
	}
	if sale.SaleType == models.SaleHouse {
		b.WriteString("HOUSE ACCOUNT - NOT A SALE\n")
		if sale.Notes != "" {
			fmt.Fprintf(&b, "Reason: %s\n", sale.Notes)
		}
	}
	if sale.Voided() {
		fmt.Fprintf(&b, "*** VOIDED: %s ***\n", sale.VoidReason)
	}

	return ReceiptDocument{Number: number, Body: b.String()}
}

// Emit hands the document to the printer. Errors are reported to the caller
// for a user-facing message but never unwind the sale.
func (rc *ReceiptService) Emit(doc ReceiptDocument) error {
	if err := rc.Printer.Print(doc); err != nil {
		utils.ErrorLogger.Printf("Failed to print receipt %s: %v", doc.Number, err)
		return err
	}
	return nil
}
