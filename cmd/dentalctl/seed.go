package main

import (
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/dental-api/internal/app"
	"github.com/jwalitptl/dental-api/internal/model"
)

// defaultServices is the catalog shown on the clinic landing page.
var defaultServices = []model.ServiceInput{
	{
		Name:              "Limpieza Dental",
		Description:       "Limpieza profesional y profilaxis dental",
		Duration:          60,
		Price:             decimal.NewFromInt(80),
		Category:          model.CategoryGeneral,
		RequiredEquipment: []string{"Ultrasonido", "Curetas"},
		Notes:             "Incluye fluorización",
	},
	{
		Name:              "Consulta General",
		Description:       "Evaluación general y diagnóstico",
		Duration:          30,
		Price:             decimal.NewFromInt(50),
		Category:          model.CategoryGeneral,
		RequiredEquipment: []string{"Espejo dental", "Sonda"},
		Notes:             "Incluye radiografías si es necesario",
	},
	{
		Name:              "Ortodoncia",
		Description:       "Tratamiento de alineación dental",
		Duration:          45,
		Price:             decimal.NewFromInt(150),
		Category:          model.CategoryOrthodontics,
		RequiredEquipment: []string{"Brackets", "Arcos"},
		Notes:             "Consulta inicial incluye plan de tratamiento",
	},
	{
		Name:              "Atención de Urgencia",
		Description:       "Atención inmediata para emergencias dentales",
		Duration:          30,
		Price:             decimal.NewFromInt(100),
		Category:          model.CategoryGeneral,
		RequiredEquipment: []string{"Kit de emergencia"},
		Notes:             "Disponible fuera de horario regular",
	},
	{
		Name:              "Endodoncia",
		Description:       "Tratamiento de conducto radicular",
		Duration:          90,
		Price:             decimal.NewFromInt(200),
		Category:          model.CategorySurgery,
		RequiredEquipment: []string{"Limas endodónticas", "Localizador de ápice"},
		Notes:             "Puede requerir múltiples sesiones",
	},
	{
		Name:              "Blanqueamiento Dental",
		Description:       "Tratamiento estético de blanqueamiento",
		Duration:          60,
		Price:             decimal.NewFromInt(120),
		Category:          model.CategoryCosmetic,
		RequiredEquipment: []string{"Gel blanqueador", "Lámpara LED"},
		Notes:             "Incluye kit para casa",
	},
	{
		Name:              "Extracción Dental",
		Description:       "Extracción simple o quirúrgica",
		Duration:          45,
		Price:             decimal.NewFromInt(80),
		Category:          model.CategorySurgery,
		RequiredEquipment: []string{"Fórceps", "Elevadores"},
		Notes:             "Incluye medicación post-operatoria",
	},
	{
		Name:              "Implante Dental",
		Description:       "Colocación de implante dental",
		Duration:          120,
		Price:             decimal.NewFromInt(800),
		Category:          model.CategorySurgery,
		RequiredEquipment: []string{"Implante titanio", "Kit quirúrgico"},
		Notes:             "Incluye corona provisional",
	},
}

func seedServicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-services",
		Short: "Create the default service catalog, skipping names that exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				existing, err := a.Services.Catalog.ListServices(cmd.Context(), "", false)
				if err != nil {
					return err
				}
				have := make(map[string]bool, len(existing))
				for _, s := range existing {
					have[strings.ToLower(s.Name)] = true
				}

				created := 0
				for _, in := range defaultServices {
					if have[strings.ToLower(in.Name)] {
						continue
					}
					svc, err := a.Services.Catalog.CreateService(cmd.Context(), in)
					if err != nil {
						return err
					}
					created++
					cmd.Printf("- %s (%s) - %s\n", svc.Name, svc.Category, svc.Price.StringFixed(2))
				}
				cmd.Printf("%d services created, %d already present\n", created, len(defaultServices)-created)
				return nil
			})
		},
	}
}

var documentTypes = []model.DocumentType{
	model.DocumentTypeDNI,
	model.DocumentTypeNIE,
	model.DocumentTypePasaporte,
	model.DocumentTypeCedula,
}

func fakePatient(now time.Time) model.CreatePatientRequest {
	dob := gofakeit.DateRange(now.AddDate(-90, 0, 0), now.AddDate(-3, 0, 0))
	return model.CreatePatientRequest{
		Name:           gofakeit.Name(),
		DocumentNumber: gofakeit.Numerify("########") + strings.ToUpper(gofakeit.LetterN(1)),
		DocumentType:   documentTypes[gofakeit.Number(0, len(documentTypes)-1)],
		Email:          gofakeit.Email(),
		Phone:          gofakeit.Phone(),
		DateOfBirth:    &dob,
		Address: &model.Address{
			Street:  gofakeit.Street(),
			City:    gofakeit.City(),
			State:   gofakeit.State(),
			ZipCode: gofakeit.Zip(),
		},
		Status: model.PatientStatusActive,
	}
}

func seedPatientsCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "seed-patients",
		Short: "Create fake patients for development",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				now := time.Now()
				created := 0
				for i := 0; i < count; i++ {
					if _, err := a.Services.Patients.CreatePatient(cmd.Context(), fakePatient(now)); err != nil {
						a.Logger.Warn("Skipping fake patient", "error", err.Error())
						continue
					}
					created++
				}
				cmd.Printf("%d patients created\n", created)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&count, "count", 50, "number of patients to create")
	return cmd
}
