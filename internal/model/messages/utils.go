package messages

import (
	"fmt"
	"strings"

	"max.ks1230/tcmb-rates/internal/entity/currency"
	"max.ks1230/tcmb-rates/internal/model/rates"
	"max.ks1230/tcmb-rates/internal/model/reports"
)

const commandParts = 2

func parseCommand(text string) (cmd, arg string) {
	text = strings.TrimSpace(text)
	split := strings.SplitN(text, " ", commandParts)

	if len(split) == commandParts && strings.HasPrefix(split[0], "/") {
		return stripBotName(split[0]), strings.TrimSpace(split[1])
	}
	if strings.HasPrefix(text, "/") {
		return stripBotName(text), ""
	}
	return "", text
}

// stripBotName turns "/latest@tcmb_bot" into "/latest" as sent in group chats.
func stripBotName(cmd string) string {
	if i := strings.Index(cmd, "@"); i > 0 {
		return cmd[:i]
	}
	return cmd
}

func formatLatest(recs []currency.RateRecord) string {
	if len(recs) == 0 {
		return noRatesMessage
	}
	res := make([]string, 0, len(recs)+2)
	res = append(res, fmt.Sprintf("Rates of %s (buy / sell):", recs[0].Date.Format(dateLayout)), "")
	for _, rec := range recs {
		res = append(res, fmt.Sprintf("%s: %.4f / %.4f", rec.Code, rec.BuyRate, rec.SellRate))
	}
	return strings.Join(res, "\n")
}

func formatConversion(c rates.Conversion) string {
	return fmt.Sprintf("%s %s = %s %s\n(sell rates of %s)",
		formatAmount(c.Amount), c.From,
		formatAmount(c.Converted), c.To,
		c.RateDate.Format(dateLayout))
}

func formatAmount(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func formatHistory(recs []currency.RateRecord) string {
	res := make([]string, 0, len(recs)+1)
	res = append(res, fmt.Sprintf("%s history (buy / sell):", recs[0].Code))
	for _, rec := range recs {
		res = append(res, fmt.Sprintf("%s: %.4f / %.4f", rec.Date.Format(dateLayout), rec.BuyRate, rec.SellRate))
	}
	return strings.Join(res, "\n")
}

func formatReport(r reports.Report) string {
	return fmt.Sprintf("%s this %s (%s - %s, %d days):\n"+
		"sell %.4f -> %.4f (%+.2f%%)\n"+
		"min %.4f, max %.4f, avg %.4f",
		r.Code, r.Period, r.From.Format(dateLayout), r.To.Format(dateLayout), r.Samples,
		r.First, r.Last, r.ChangePercent,
		r.Min, r.Max, r.Average)
}

func formatCurrencies(recs []currency.RateRecord) string {
	res := make([]string, 0, len(recs))
	for _, rec := range recs {
		res = append(res, fmt.Sprintf("%s - %s", rec.Code, rec.Name))
	}
	return strings.Join(res, "\n")
}

func formatIngested(event currency.IngestedEvent) string {
	return fmt.Sprintf("New TCMB rates for %s: %d currencies saved (%s)",
		event.Date.Format(dateLayout), event.Saved, strings.Join(event.Codes, ", "))
}
