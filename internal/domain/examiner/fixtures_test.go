package examiner

import (
	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
)

func chestPainCase() *domain.Case {
	return &domain.Case{
		ID:         "chest-pain",
		Title:      "Acute chest pain",
		Specialty:  "cardiology",
		Difficulty: "medium",
		Vignette:   "A 58-year-old man presents with chest pain.",
		Closing:    "Thank you, we are done.",
		Phases: map[domain.Phase]domain.PhaseScript{
			domain.PhaseIntro: {
				Question: "Please take a focused history.",
				Checklist: []domain.ChecklistItem{
					{Label: "Onset", Keywords: []string{"onset", "started", "began"}},
					{Label: "Radiation", Keywords: []string{"radiat", "jaw", "left arm"}},
					{Label: "Risk factors", Keywords: []string{"smok", "diabet", "hypertens"}, Prompt: "What are his cardiovascular risk factors?"},
				},
			},
			domain.PhaseDDx: {
				Question:   "What is your differential diagnosis?",
				Escalation: "How would you distinguish aortic dissection at the bedside?",
				Checklist: []domain.ChecklistItem{
					{Label: "ACS", Keywords: []string{"acs", "acute coronary", "myocardial infarction"}},
					{Label: "Aortic dissection", Keywords: []string{"dissection"}},
					{Label: "Pulmonary embolism", Keywords: []string{"embolism"}},
				},
			},
			domain.PhaseDiagnostics: {
				Question: "Which investigations do you order?",
				Checklist: []domain.ChecklistItem{
					{Label: "ECG", Keywords: []string{"ecg", "ekg", "electrocardiogram"}},
					{Label: "Troponin", Keywords: []string{"troponin"}},
					{Label: "Chest X-ray", Keywords: []string{"x-ray", "xray", "radiograph"}},
				},
			},
			domain.PhaseManagement: {
				Question:   "How do you manage him?",
				Escalation: "He goes into ventricular fibrillation. What now?",
				Checklist: []domain.ChecklistItem{
					{Label: "Aspirin", Keywords: []string{"aspirin"}},
					{Label: "Cath lab", Keywords: []string{"pci", "cath", "angiography"}},
					{Label: "Anticoagulation", Keywords: []string{"heparin", "anticoag"}},
				},
			},
			domain.PhaseClosing: {
				Question: "Summarize the case for the patient.",
				Checklist: []domain.ChecklistItem{
					{Label: "Summary", Keywords: []string{"summar", "in short"}},
				},
			},
		},
		RedFlags: []domain.ChecklistItem{
			{Label: "Thrombolysis", Keywords: []string{"thrombolys"}},
		},
	}
}

var testSessionID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

func candidate(p domain.Phase, text string) domain.Message {
	return domain.Message{SessionID: testSessionID, Role: domain.RoleCandidate, Kind: domain.KindAnswer, Phase: p, Text: text}
}

func examinerMsg(p domain.Phase, text string, focus *domain.Focus) domain.Message {
	return domain.Message{SessionID: testSessionID, Role: domain.RoleExaminer, Kind: domain.KindFollowUp, Phase: p, Text: text, Focus: focus}
}

func fullTranscript() []domain.Message {
	return []domain.Message{
		candidate(domain.PhaseIntro, "It started suddenly and radiates to the jaw. He smokes."),
		candidate(domain.PhaseDDx, "ACS, aortic dissection, pulmonary embolism"),
		candidate(domain.PhaseDiagnostics, "ECG, troponin, chest x-ray"),
		candidate(domain.PhaseManagement, "Aspirin, heparin, urgent PCI"),
		candidate(domain.PhaseClosing, "In short, this is likely a heart attack."),
	}
}
