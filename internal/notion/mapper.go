package notion

import (
	"time"

	"github.com/jomei/notionapi"

	store "github.com/dvloznov/cardwise/internal/store/bigquery"
)

// transactionToProperties maps a transaction row onto the Notion
// database schema: Transaction ID (title), Date, Description, Amount,
// Category (select), Statement ID.
func transactionToProperties(tx *store.TransactionRow) notionapi.Properties {
	props := notionapi.Properties{
		"Transaction ID": notionapi.TitleProperty{
			Title: richText(tx.TransactionID),
		},
		"Amount": notionapi.NumberProperty{
			Number: tx.Amount,
		},
	}

	if tx.Description != "" {
		props["Description"] = notionapi.RichTextProperty{
			RichText: richText(tx.Description),
		}
	}

	if tx.Category != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Category,
			},
		}
	}

	if tx.StatementID != "" {
		props["Statement ID"] = notionapi.RichTextProperty{
			RichText: richText(tx.StatementID),
		}
	}

	if tx.TransactionDate.IsValid() {
		d := notionapi.Date(time.Date(
			tx.TransactionDate.Year,
			time.Month(tx.TransactionDate.Month),
			tx.TransactionDate.Day,
			0, 0, 0, 0, time.UTC,
		))
		props["Date"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: &d,
			},
		}
	}

	return props
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{
				Content: content,
			},
		},
	}
}

// extractTransactionID pulls the Transaction ID title back out of a
// page created by transactionToProperties. Empty if the page does not
// carry one.
func extractTransactionID(page notionapi.Page) string {
	prop, ok := page.Properties["Transaction ID"]
	if !ok {
		return ""
	}
	title, ok := prop.(*notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 {
		return ""
	}
	return title.Title[0].PlainText
}
