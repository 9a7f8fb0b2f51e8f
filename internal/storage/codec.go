package storage

import (
	"encoding/json"
	"errors"

	"sepnet/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(run model.Run) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeRun(data []byte) (model.Run, error) {
	var run model.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return model.Run{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.Run{}, err
	}
	return run, nil
}

func EncodeEvaluations(evaluations []model.Evaluation) ([]byte, error) {
	return json.Marshal(evaluations)
}

func DecodeEvaluations(data []byte) ([]model.Evaluation, error) {
	var evaluations []model.Evaluation
	if err := json.Unmarshal(data, &evaluations); err != nil {
		return nil, err
	}
	return evaluations, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
