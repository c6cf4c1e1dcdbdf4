package classifier

// Bilingual exemplar questions per path. The embedding strategy scores
// an incoming question by its closest exemplar in each list, so the
// lists deliberately mix Spanish and English phrasings of the same
// intents the catalog sees in practice.
var (
	sqlExemplars = []string{
		"¿Cuántos usuarios hay?",
		"How many users are registered?",
		"Dame el promedio de calificaciones",
		"What's the average rating?",
		"Lista los 10 contenidos más vistos",
		"Show me the top 10 movies",
		"¿Qué usuario tiene más visualizaciones?",
		"Which content is most viewed?",
		"Total de películas",
		"Count the series",
		"Highest rated content",
		"Contenido mejor calificado",
		"¿Cuál es la película más popular?",
		"Most viewed series",
	}

	ragExemplars = []string{
		"¿De qué trata Aventuras Galácticas?",
		"What is Aventuras Galácticas about?",
		"Describe la trama de Terror Nocturno",
		"Tell me about El Misterio del Faro",
		"¿Cuál es el tema de Amor en Primavera?",
		"What's the plot of La Casa del Tiempo?",
		"Cuéntame sobre Historia de la Humanidad",
		"Describe Mundos Paralelos",
		"What is the story of Océanos Profundos?",
		"Explícame de qué va Familias Modernas",
		"What's Detectives del Futuro about?",
		"Háblame sobre Aventuras en el Amazonas",
	}

	hybridExemplars = []string{
		"¿De qué trata la película más vista?",
		"What is the most viewed movie about?",
		"Películas de ciencia ficción mejor calificadas con sus tramas",
		"Best rated sci-fi movies and their plots",
		"Top 5 películas populares y de qué tratan",
		"Most popular movies and what they're about",
		"Películas con rating mayor a 8 y sus descripciones",
		"Tell me about the highest rated movie and its plot",
		"Dame las películas de comedia más vistas y explícame de qué van",
		"Show me top rated movies with descriptions",
		"¿Cuál es la película mejor calificada y de qué trata?",
		"Most watched movies and their plots",
		"Mejor película y su descripción",
		"Top movies with summaries",
	}
)
