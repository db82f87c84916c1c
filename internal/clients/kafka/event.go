package kafka

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"max.ks1230/tcmb-rates/internal/entity/currency"
)

const (
	fieldDate  = "date"
	fieldSaved = "saved"
	fieldCodes = "codes"
)

func encodeIngested(event currency.IngestedEvent) ([]byte, error) {
	codes := make([]interface{}, 0, len(event.Codes))
	for _, code := range event.Codes {
		codes = append(codes, code)
	}

	msg, err := structpb.NewStruct(map[string]interface{}{
		fieldDate:  event.Date.Format(currency.DateLayout),
		fieldSaved: event.Saved,
		fieldCodes: codes,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode ingested event")
	}
	return proto.Marshal(msg)
}

func decodeIngested(data []byte) (currency.IngestedEvent, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return currency.IngestedEvent{}, errors.Wrap(err, "decode ingested event")
	}
	fields := msg.GetFields()

	date, err := currency.ParseDate(fields[fieldDate].GetStringValue())
	if err != nil {
		return currency.IngestedEvent{}, errors.Wrap(err, "decode ingested event")
	}

	values := fields[fieldCodes].GetListValue().GetValues()
	codes := make([]string, 0, len(values))
	for _, v := range values {
		codes = append(codes, v.GetStringValue())
	}

	return currency.IngestedEvent{
		Date:  date,
		Saved: int(fields[fieldSaved].GetNumberValue()),
		Codes: codes,
	}, nil
}
