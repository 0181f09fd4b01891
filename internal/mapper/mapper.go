package mapper

import (
	"encoding/json"

	"github.com/straye-as/sales-assistant-api/internal/domain"
)

// ToManagerAlertDTO converts ManagerAlert to ManagerAlertDTO
func ToManagerAlertDTO(alert *domain.ManagerAlert) domain.ManagerAlertDTO {
	return domain.ManagerAlertDTO{
		ID:            alert.ID,
		TenantID:      alert.TenantID,
		AlertType:     alert.AlertType,
		Priority:      alert.Priority,
		CustomerID:    alert.CustomerID,
		CustomerName:  alert.CustomerName,
		CustomerPhone: alert.CustomerPhone,
		Title:         alert.Title,
		Message:       alert.Message,
		Details:       DecodeDetails(alert.Details),
		ActionTaken:   alert.ActionTaken,
		Dispatched:    alert.Dispatched,
		DispatchError: alert.DispatchError,
		CreatedAt:     alert.CreatedAt,
	}
}

// ToManagerAlertDTOs converts a slice of alerts
func ToManagerAlertDTOs(alerts []domain.ManagerAlert) []domain.ManagerAlertDTO {
	dtos := make([]domain.ManagerAlertDTO, len(alerts))
	for i := range alerts {
		dtos[i] = ToManagerAlertDTO(&alerts[i])
	}
	return dtos
}

// ToIntelligenceRunDTO converts IntelligenceRun to IntelligenceRunDTO
func ToIntelligenceRunDTO(run *domain.IntelligenceRun) domain.IntelligenceRunDTO {
	return domain.IntelligenceRunDTO{
		ID:                 run.ID,
		TenantID:           run.TenantID,
		Status:             run.Status,
		StartedAt:          run.StartedAt,
		FinishedAt:         run.FinishedAt,
		CustomersProcessed: run.CustomersProcessed,
		MessagesSent:       run.MessagesSent,
		AlertsRaised:       run.AlertsRaised,
		Errors:             run.Errors,
		DurationMs:         run.DurationMs,
		ErrorMessage:       run.ErrorMessage,
	}
}

// ToIntelligenceRunDTOs converts a slice of runs
func ToIntelligenceRunDTOs(runs []domain.IntelligenceRun) []domain.IntelligenceRunDTO {
	dtos := make([]domain.IntelligenceRunDTO, len(runs))
	for i := range runs {
		dtos[i] = ToIntelligenceRunDTO(&runs[i])
	}
	return dtos
}

// EncodeDetails serialises alert details for storage. Empty maps encode as "".
func EncodeDetails(details map[string]interface{}) string {
	if len(details) == 0 {
		return ""
	}
	b, err := json.Marshal(details)
	if err != nil {
		return ""
	}
	return string(b)
}

// DecodeDetails parses stored alert details; invalid or empty input yields nil
func DecodeDetails(raw string) map[string]interface{} {
	if raw == "" {
		return nil
	}
	var details map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		return nil
	}
	return details
}
