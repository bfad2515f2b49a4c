package extract

// Canonical output keys written by the extractor.
const (
	KeyName            = "Nome"
	KeyIdentifier      = "CPF"
	KeyOccupation      = "CBO"
	KeyIndustry        = "CNAE"
	KeyEmployer        = "Empregador"
	KeyMarginAvailable = "ValorMargemDisponivel"
	KeyMarginBase      = "ValorBaseMargem"

	KeyEligibilityCode        = "MotivoInelegibilidade_Codigo"
	KeyEligibilityDescription = "MotivoInelegibilidade_Descricao"
)

// Payload field names as exported by the proposals system.
const (
	fieldOccupation      = "cbo"
	fieldIndustry        = "cnae"
	fieldName            = "nome"
	fieldIdentifier      = "cpf"
	fieldEmployer        = "nomeEmpregador"
	fieldMarginAvailable = "valorMargemDisponivel"
	fieldMarginBase      = "valorBaseMargem"
	fieldCode            = "codigo"
	fieldDescription     = "descricao"
)

// passThrough maps payload fields copied verbatim after the code pairs.
var passThrough = []struct{ field, key string }{
	{fieldEmployer, KeyEmployer},
	{fieldMarginAvailable, KeyMarginAvailable},
	{fieldMarginBase, KeyMarginBase},
}
