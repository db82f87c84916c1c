package messages

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"max.ks1230/tcmb-rates/internal/entity/currency"
	"max.ks1230/tcmb-rates/internal/model/customerr"
	"max.ks1230/tcmb-rates/internal/model/rates"
	"max.ks1230/tcmb-rates/internal/model/reports"
)

const dateLayout = "02.01.2006"

const (
	dontUnderstandMessage = "I don't understand you :("
	helloMessage          = "Hello! I am the TCMB exchange rates bot 💱"
	loveToTalkMessage     = "I only talk about exchange rates. Try /help"
	noRatesMessage        = "There are no rates yet. Try later"

	incorrectUsageMessage  = "That is an incorrect command usage"
	incorrectAmountMessage = "The amount is incorrect. Should be a positive number"
	incorrectDateMessage   = "The date is incorrect. Should be dd.mm.yyyy"
	cannotGetRatesMessage  = "Can't get rates atm. Try later"
)

const helpMessage = `Commands:
/latest - latest rates
/convert <amount> <from> <to> - e.g. /convert 100 USD EUR
/history <code> [from dd.mm.yyyy] [to dd.mm.yyyy]
/report <code> [week|month|year] - sell rate trend
/currencies - known currencies`

const (
	startCommand      = "/start"
	helpCommand       = "/help"
	latestCommand     = "/latest"
	convertCommand    = "/convert"
	historyCommand    = "/history"
	reportCommand     = "/report"
	currenciesCommand = "/currencies"
)

type ratesService interface {
	LatestRates(ctx context.Context) (rates.LatestRates, error)
	Convert(ctx context.Context, amount float64, from, to string) (rates.Conversion, error)
	History(ctx context.Context, code string, from, to *time.Time) ([]currency.RateRecord, error)
	Currencies(ctx context.Context) ([]currency.RateRecord, error)
}

type reportGenerator interface {
	Generate(ctx context.Context, code, period string) (reports.Report, error)
}

type handler func(ctx context.Context, arg string, user int64) (string, error)

type handlerMap map[string]handler

type HandlerService struct {
	handlersMap handlerMap
	rates       ratesService
	reports     reportGenerator
	loc         *time.Location
}

func newHandler(rates ratesService, reports reportGenerator, loc *time.Location) *HandlerService {
	res := &HandlerService{
		handlersMap: nil,
		rates:       rates,
		reports:     reports,
		loc:         loc,
	}
	res.handlersMap = newMap(res)
	return res
}

func (s *HandlerService) HandleMessage(ctx context.Context, text string, userID int64) (string, error) {
	cmd, arg := parseCommand(text)

	handler, ok := s.handlersMap[cmd]
	if ok {
		return handler(ctx, arg, userID)
	}
	return dontUnderstandMessage, nil
}

func newMap(s *HandlerService) handlerMap {
	m := make(handlerMap)
	m[startCommand] = s.handleStart
	m[helpCommand] = s.handleHelp
	m[latestCommand] = s.handleLatest
	m[convertCommand] = s.handleConvert
	m[historyCommand] = s.handleHistory
	m[reportCommand] = s.handleReport
	m[currenciesCommand] = s.handleCurrencies

	m[""] = s.handleNoCommand

	return m
}

func (s *HandlerService) handleStart(_ context.Context, _ string, _ int64) (string, error) {
	return helloMessage + "\n\n" + helpMessage, nil
}

func (s *HandlerService) handleHelp(_ context.Context, _ string, _ int64) (string, error) {
	return helpMessage, nil
}

func (s *HandlerService) handleLatest(ctx context.Context, _ string, _ int64) (string, error) {
	latest, err := s.rates.LatestRates(ctx)
	if customerr.IsNotFound(err) {
		return noRatesMessage, nil
	}
	if err != nil {
		return cannotGetRatesMessage, errors.Wrap(err, "handle latest")
	}
	return formatLatest(latest.Records), nil
}

func (s *HandlerService) handleConvert(ctx context.Context, arg string, _ int64) (string, error) {
	args := strings.Fields(arg)
	if len(args) != 3 {
		return incorrectUsageMessage, nil
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(args[0], ",", "."), 64)
	if err != nil || amount <= 0 {
		return incorrectAmountMessage, nil
	}

	res, err := s.rates.Convert(ctx, amount, args[1], args[2])
	switch {
	case customerr.IsValidation(err):
		return incorrectAmountMessage, nil
	case customerr.IsNotFound(err):
		return fmt.Sprintf("Unknown currency (%s)", err.Error()), nil
	case err != nil:
		return cannotGetRatesMessage, errors.Wrap(err, "handle convert")
	}
	return formatConversion(res), nil
}

func (s *HandlerService) handleHistory(ctx context.Context, arg string, _ int64) (string, error) {
	args := strings.Fields(arg)
	if len(args) == 0 || len(args) > 3 {
		return incorrectUsageMessage, nil
	}

	var bounds [2]*time.Time
	for i, raw := range args[1:] {
		date, err := time.ParseInLocation(dateLayout, raw, s.loc)
		if err != nil {
			return incorrectDateMessage, nil
		}
		bounds[i] = &date
	}

	recs, err := s.rates.History(ctx, args[0], bounds[0], bounds[1])
	if err != nil {
		return cannotGetRatesMessage, errors.Wrap(err, "handle history")
	}
	if len(recs) == 0 {
		return fmt.Sprintf("No history for %s", currency.Normalize(args[0])), nil
	}
	return formatHistory(recs), nil
}

func (s *HandlerService) handleReport(ctx context.Context, arg string, _ int64) (string, error) {
	args := strings.Fields(arg)
	if len(args) == 0 || len(args) > 2 {
		return incorrectUsageMessage, nil
	}
	var period string
	if len(args) == 2 {
		period = strings.ToLower(args[1])
	}

	report, err := s.reports.Generate(ctx, args[0], period)
	switch {
	case customerr.IsValidation(err):
		return fmt.Sprintf("Unknown period. Use one of: %s", strings.Join(reports.ReportPeriods(), ", ")), nil
	case customerr.IsNotFound(err):
		return fmt.Sprintf("No rates for %s in this period", currency.Normalize(args[0])), nil
	case err != nil:
		return cannotGetRatesMessage, errors.Wrap(err, "handle report")
	}
	return formatReport(report), nil
}

func (s *HandlerService) handleCurrencies(ctx context.Context, _ string, _ int64) (string, error) {
	recs, err := s.rates.Currencies(ctx)
	if customerr.IsNotFound(err) {
		return noRatesMessage, nil
	}
	if err != nil {
		return cannotGetRatesMessage, errors.Wrap(err, "handle currencies")
	}
	return formatCurrencies(recs), nil
}

func (s *HandlerService) handleNoCommand(_ context.Context, _ string, _ int64) (string, error) {
	return loveToTalkMessage, nil
}
