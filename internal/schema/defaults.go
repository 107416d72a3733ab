package schema

import "github.com/rosa-dev/rosa/internal/model"

// Category names of the standard catalog.
const (
	CategoryPrestations  = "Prestations sociales/minimas sociaux"
	CategoryRevenus      = "Revenus"
	CategoryAutres       = "Autres revenus"
	CategoryLogement     = "Logement"
	CategorySante        = "Santé et Éducation"
	CategoryTransport    = "Transport"
	CategoryEngagements  = "Engagements financiers"
	defaultSchemaVersion = 1
)

// Default returns the standard catalog of income and expense categories.
// Each call returns a fresh copy.
func Default() model.CategorySchema {
	return model.CategorySchema{
		Version: defaultSchemaVersion,
		Categories: []model.CategorySpec{
			{Name: CategoryPrestations, Side: model.SideIncome, Items: []string{
				"RSA/Prime d'activité",
				"AAH, PI (pension d'invalidité)",
				"APL (Bailleur ou bénéficiaire)",
				"PAJE",
				"AF (Allocations Familiales)",
				"CF (Complément Familial)",
				"ASF (Allocation de Soutien Familial)",
				"APE Congé Parental",
			}},
			{Name: CategoryRevenus, Side: model.SideIncome, Items: []string{
				"IJ CPAM/MSA",
				"France Travail",
				"Retraite, A.S.P.A.",
				"Salaire",
				"Allocation Demandeur d'Asile (ADA)",
				"Stage, Formation, bourses",
				"Autres revenus",
			}},
			{Name: CategoryAutres, Side: model.SideIncome, Items: []string{
				"Aide Conseil Départemental",
				"Pension alimentaire",
				"Travail non déclaré",
				"Soutien familial ou amical",
				"Contrat Garantie Jeunes (MLJ)",
				"Contrat d'apprentissage",
				"Tickets service",
				"Bons d'alimentation",
			}},
			{Name: CategoryLogement, Side: model.SideExpense, Items: []string{
				"Loyer résiduel",
				"Énergie",
				"Eau",
				"Assurance habitation",
			}},
			{Name: CategorySante, Side: model.SideExpense, Items: []string{
				"Mutuelle privée",
				"CSS (Complémentaire Santé Solidaire)",
				"Frais scolaires (cantine, sorties)",
				"Frais de santé non remboursés",
			}},
			{Name: CategoryTransport, Side: model.SideExpense, Items: []string{
				"Transport en commun",
				"Carburant",
			}},
			{Name: CategoryEngagements, Side: model.SideExpense, Items: []string{
				"Crédit à la consommation",
				"Dettes diverses",
				"Abonnements sport et culture",
			}},
		},
	}
}
