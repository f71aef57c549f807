package views

// messages holds the interface strings the default templates translate.
// Missing entries fall back to English.
var messages = map[string]map[string]string{
	"en": {
		"latest":         "Latest articles",
		"no_articles":    "Nothing published yet.",
		"contact":        "Get in touch",
		"name":           "Name",
		"email":          "Email",
		"company":        "Company",
		"message":        "Message",
		"send":           "Send",
		"thanks":         "Thanks! We will be in touch shortly.",
		"related":        "Related articles",
		"back":           "Back to home",
		"not_found":      "Page not found",
		"server_error":   "Something went wrong",
		"views":          "views",
		"read_more":      "Read more",
		"language":       "Language",
		"published_on":   "Published",
		"not_found_body": "The page you are looking for does not exist.",
		"error_body":     "Please try again in a moment.",
	},
	"es": {
		"latest":         "Últimos artículos",
		"no_articles":    "Todavía no hay nada publicado.",
		"contact":        "Contáctanos",
		"name":           "Nombre",
		"email":          "Correo electrónico",
		"company":        "Empresa",
		"message":        "Mensaje",
		"send":           "Enviar",
		"thanks":         "¡Gracias! Nos pondremos en contacto pronto.",
		"related":        "Artículos relacionados",
		"back":           "Volver al inicio",
		"not_found":      "Página no encontrada",
		"server_error":   "Algo salió mal",
		"views":          "visitas",
		"read_more":      "Leer más",
		"language":       "Idioma",
		"published_on":   "Publicado",
		"not_found_body": "La página que buscas no existe.",
		"error_body":     "Inténtalo de nuevo en un momento.",
	},
}

// T translates key for lang.
func T(lang, key string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := messages["en"][key]; ok {
		return s
	}
	return key
}
