package htx

func Fuzz(data []byte) int {
	var _, err = NewBundle().
		AddTemplateString("/fuzz.htx", string(data)).
		Compile()

	if err != nil {
		return 0
	}

	return 1
}
